package data

import (
	"fmt"
	"os"
	"testing"

	tcommon "github.com/bobmcallan/pitfacts/tests/common"
)

func TestMain(m *testing.M) {
	code := m.Run()
	if err := tcommon.CleanupContainers(); err != nil {
		fmt.Fprintf(os.Stderr, "cleanup test containers: %v\n", err)
		if code == 0 {
			code = 1
		}
	}
	os.Exit(code)
}
