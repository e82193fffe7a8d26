package guard

import (
	"os"
	"sync"
)

var once sync.Once

func init() {
	once.Do(func() {
		if os.Getenv("IMPALAHUB_TEST_MODE") == "" {
			_ = os.Setenv("IMPALAHUB_TEST_MODE", "1")
		}
	})
}
