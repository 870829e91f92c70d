package coingeckopricing

var DecFromFloat = decFromFloat
