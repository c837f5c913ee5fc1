package internal

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/Netflix/go-env"
	"github.com/joho/godotenv"
)

// LoadConfig fills target from the environment. Variables found in files
// are loaded first without overriding the ones already set; a missing file
// is ignored.
func LoadConfig[T any](target *T, files ...string) error {
	for _, file := range files {
		if err := godotenv.Load(file); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("loading %s: %w", file, err)
		}
	}
	if _, err := env.UnmarshalFromEnviron(target); err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	return nil
}
