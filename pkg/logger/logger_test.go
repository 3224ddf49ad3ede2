package logger

import (
	"bytes"
	"strings"
	"testing"
)

func TestInitStampsService(t *testing.T) {
	Reset()
	defer Reset()

	var buf bytes.Buffer
	log := Init(Options{Level: "debug", Output: &buf})
	log.Info().Msg("boot")

	if !strings.Contains(buf.String(), `"service":"storefront-gateway"`) {
		t.Fatalf("expected service field, got %s", buf.String())
	}
}

func TestForTagsComponent(t *testing.T) {
	Reset()
	defer Reset()

	var buf bytes.Buffer
	Init(Options{Output: &buf})
	l := For("guard")
	l.Info().Msg("decision")

	if !strings.Contains(buf.String(), `"component":"guard"`) {
		t.Fatalf("expected component field, got %s", buf.String())
	}
}

func TestGetBeforeInitPanics(t *testing.T) {
	Reset()
	defer Reset()

	defer func() {
		if recover() == nil {
			t.Fatal("expected panic")
		}
	}()
	Get()
}
