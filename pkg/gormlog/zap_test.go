package gormlog

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestShortCaller(t *testing.T) {
	cases := map[string]string{
		"": "",
		"/home/ci/feepay/internal/platform/db/postgres.go:38": "internal/platform/db/postgres.go:38",
		"/go/pkg/mod/gorm.io/gorm@v1.31.1/callbacks.go:130":   "pkg/mod/gorm.io/gorm@v1.31.1/callbacks.go:130",
		"/a/b/c/d.go:1": "b/c/d.go:1",
		"/x/y.go:2":     "x/y.go:2",
	}
	for in, want := range cases {
		require.Equal(t, want, shortCaller(in), in)
	}
}
