package syncerr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKindOf(t *testing.T) {
	base := errors.New("boom")

	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{name: "fatal", err: Fatal("login", base), want: KindFatal},
		{name: "row", err: Row("poll", base), want: KindRow},
		{name: "file", err: File("post", base), want: KindFile},
		{name: "backpressure", err: Backpressure("capacity", base), want: KindBackpressure},
		{name: "wrapped fatal", err: fmt.Errorf("outer: %w", Fatal("login", base)), want: KindFatal},
		{name: "unclassified", err: base, want: KindRow},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			assert.Equal(t, test.want, KindOf(test.err))
		})
	}
}

func TestErrorUnwrapsToCause(t *testing.T) {
	base := errors.New("timeout")
	err := Fatalf("staging", "request failed: %w", base)
	require.True(t, errors.Is(err, base))
	assert.True(t, IsFatal(err))
	assert.False(t, IsBackpressure(err))
	assert.Equal(t, "staging: request failed: timeout", err.Error())
}

func TestNilIsNeverFatal(t *testing.T) {
	assert.False(t, IsFatal(nil))
	assert.False(t, IsBackpressure(nil))
}
