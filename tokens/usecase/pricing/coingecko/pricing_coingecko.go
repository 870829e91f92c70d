package coingeckopricing

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/osmosis-labs/osmosis/osmomath"

	deliveryhttp "github.com/osmosis-labs/poolrouter/delivery/http"
	"github.com/osmosis-labs/poolrouter/domain"
	"github.com/osmosis-labs/poolrouter/domain/cache"
	"github.com/osmosis-labs/poolrouter/log"
	"github.com/osmosis-labs/poolrouter/sqsutil/sqshttp"
)

var (
	cacheHitsCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "poolrouter_pricing_cache_hits_total",
			Help: "Total number of pricing cache hits",
		},
		[]string{"base", "quote"},
	)
	cacheMissesCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "poolrouter_pricing_cache_misses_total",
			Help: "Total number of pricing cache misses",
		},
		[]string{"base", "quote"},
	)
	pricingErrorCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "poolrouter_pricing_errors_total",
			Help: "Total number of pricing errors",
		},
		[]string{"base", "quote"},
	)
)

func init() {
	prometheus.MustRegister(cacheHitsCounter)
	prometheus.MustRegister(cacheMissesCounter)
	prometheus.MustRegister(pricingErrorCounter)
}

// maxDecPrecision is the number of fractional digits osmomath.Dec can hold.
const maxDecPrecision = 18

type coingeckoPricing struct {
	cache         *cache.Cache
	cacheExpiryNs time.Duration
	quoteCurrency string
	coingeckoUrl  string
	client        *http.Client
	logger        log.Logger
}

var _ domain.PriceOracle = &coingeckoPricing{}

// New returns a price oracle backed by the CoinGecko simple price endpoint.
func New(config domain.PricingConfig, logger log.Logger) domain.PriceOracle {
	return &coingeckoPricing{
		cache:         cache.New(),
		cacheExpiryNs: time.Duration(config.CacheExpiryMs) * time.Millisecond,
		quoteCurrency: config.CoingeckoQuoteCurrency,
		coingeckoUrl:  config.CoingeckoUrl,
		client:        deliveryhttp.NewClient(10 * time.Second),
		logger:        logger,
	}
}

// GetPrice implements domain.PriceOracle.
// Currencies without a coingecko id have no price.
func (c *coingeckoPricing) GetPrice(ctx context.Context, currency domain.Currency) (osmomath.Dec, bool) {
	if currency.CoingeckoID == "" {
		return osmomath.Dec{}, false
	}

	cacheKey := formatPricingCacheKey(currency.CoingeckoID, c.quoteCurrency)
	if cachedValue, found := c.cache.Get(cacheKey); found {
		if cachedPrice, ok := cachedValue.(osmomath.Dec); ok {
			cacheHitsCounter.WithLabelValues(currency.Denom, c.quoteCurrency).Inc()
			return cachedPrice, true
		}
	}
	cacheMissesCounter.WithLabelValues(currency.Denom, c.quoteCurrency).Inc()

	price, err := c.GetPriceByCoingeckoId(ctx, currency.CoingeckoID)
	if err != nil {
		pricingErrorCounter.WithLabelValues(currency.Denom, c.quoteCurrency).Inc()
		c.logger.Debug("failed to get coingecko price", zap.String("denom", currency.Denom), zap.Error(err))
		return osmomath.Dec{}, false
	}

	c.cache.Set(cacheKey, price, c.cacheExpiryNs)

	return price, true
}

// GetPriceByCoingeckoId fetches the price of a token from Coingecko.
func (c *coingeckoPricing) GetPriceByCoingeckoId(ctx context.Context, coingeckoId string) (osmomath.Dec, error) {
	query := url.Values{}
	query.Set("ids", coingeckoId)
	query.Set("vs_currencies", c.quoteCurrency)

	data, err := sqshttp.Get[map[string]map[string]float64](ctx, c.client, c.coingeckoUrl, "?"+query.Encode())
	if err != nil {
		return osmomath.Dec{}, err
	}

	price, ok := (*data)[coingeckoId][c.quoteCurrency]
	if !ok {
		return osmomath.Dec{}, fmt.Errorf("price not found for coingecko ID: %s", coingeckoId)
	}

	return decFromFloat(price)
}

func formatPricingCacheKey(coingeckoID, quoteCurrency string) string {
	var sb strings.Builder
	sb.WriteString(coingeckoID)
	sb.WriteString("/")
	sb.WriteString(quoteCurrency)
	return sb.String()
}

// decFromFloat converts a price to a decimal, truncating digits beyond Dec precision.
func decFromFloat(price float64) (osmomath.Dec, error) {
	priceStr := strconv.FormatFloat(price, 'f', -1, 64)

	if dot := strings.IndexByte(priceStr, '.'); dot >= 0 && len(priceStr)-dot-1 > maxDecPrecision {
		priceStr = priceStr[:dot+1+maxDecPrecision]
	}

	return osmomath.NewDecFromStr(priceStr)
}
