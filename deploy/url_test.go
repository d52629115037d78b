package deploy

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestBuildReverseLookup(t *testing.T) {
	orig := lookupHost
	defer func() { lookupHost = orig }()
	lookupHost = func(host string) ([]string, error) {
		switch host {
		case "www.example.org":
			return []string{"203.0.113.5"}, nil
		case "db.example.org":
			return []string{"203.0.113.6"}, nil
		default:
			return nil, errors.New("no such host")
		}
	}

	table := buildReverseLookup([]string{"www.example.org", "db.example.org", "gone.example.org"})

	assert.Equal(t, "www.example.org", table["203.0.113.5"])
	assert.Equal(t, "db.example.org", table["203.0.113.6"])
	// unresolvable entries are skipped, unknown addresses map to ""
	assert.Equal(t, "", table["198.51.100.1"])
}
