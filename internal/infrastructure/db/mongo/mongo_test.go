package mongo

import (
	"context"
	"testing"
)

func TestConnect_RequiresDatabase(t *testing.T) {
	if _, _, err := Connect(context.Background(), Config{URI: "mongodb://localhost:27017"}); err == nil {
		t.Fatal("expected error without a database name")
	}
}

func TestRepositoryTimeoutsFitInsideConnect(t *testing.T) {
	if defaultTimeout <= 0 || defaultTimeout > connectTimeout {
		t.Errorf("defaultTimeout = %s, want within (0, %s]", defaultTimeout, connectTimeout)
	}
}
