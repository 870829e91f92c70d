package sqsutil

import (
	"os"
	"path/filepath"
)

// WriteBytes writes the given bytes to the given file in the given directory.
// If the directory does not exist, it is created.
// If the file already exists, it is replaced. The write goes through a temporary
// file in the same directory so that readers never observe a partial file.
// Returns an error if any.
func WriteBytes(directory, fileName string, bz []byte) error {
	// Create a directory if not exists
	if err := os.MkdirAll(directory, os.ModePerm); err != nil {
		return err
	}

	tmpFile, err := os.CreateTemp(directory, fileName+".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmpFile.Name()

	if _, err := tmpFile.Write(bz); err != nil {
		tmpFile.Close()
		os.Remove(tmpName)
		return err
	}

	if err := tmpFile.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}

	return os.Rename(tmpName, filepath.Join(directory, fileName))
}

// ReadBytes reads the given file from the given directory.
// Returns false if the file does not exist.
func ReadBytes(directory, fileName string) ([]byte, bool, error) {
	bz, err := os.ReadFile(filepath.Join(directory, fileName))
	if os.IsNotExist(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return bz, true, nil
}
