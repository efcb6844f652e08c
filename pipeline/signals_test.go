package pipeline

import (
	"context"
	"errors"
	"reflect"
	"testing"
)

func TestSignals_Order(t *testing.T) {
	var (
		sig   Signals
		calls []string
	)
	for _, name := range []string{"first", "second", "third"} {
		sig.ConnectContentInitialized(func(ctx context.Context, c *Content) error {
			calls = append(calls, name)
			return nil
		})
	}

	if err := sig.ContentInitialized(context.Background(), &Content{}); err != nil {
		t.Fatalf("ContentInitialized() error = %v", err)
	}
	if want := []string{"first", "second", "third"}; !reflect.DeepEqual(calls, want) {
		t.Errorf("calls = %v, want %v", calls, want)
	}
}

func TestSignals_StopsOnError(t *testing.T) {
	var (
		sig     Signals
		called  bool
		errBoom = errors.New("boom")
	)
	sig.ConnectContentInitialized(func(ctx context.Context, c *Content) error { return errBoom })
	sig.ConnectContentInitialized(func(ctx context.Context, c *Content) error {
		called = true
		return nil
	})

	if err := sig.ContentInitialized(context.Background(), &Content{}); !errors.Is(err, errBoom) {
		t.Errorf("ContentInitialized() error = %v, want %v", err, errBoom)
	}
	if called {
		t.Error("listener after failing one must not be called")
	}
}

func TestSignals_Cancelled(t *testing.T) {
	var sig Signals
	sig.ConnectContentInitialized(func(ctx context.Context, c *Content) error {
		t.Error("listener must not be called on cancelled context")
		return nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := sig.ContentInitialized(ctx, &Content{}); !errors.Is(err, context.Canceled) {
		t.Errorf("ContentInitialized() error = %v, want context.Canceled", err)
	}
}

func TestSignals_NoListeners(t *testing.T) {
	var sig Signals
	c := &Content{Body: "<p>x</p>"}
	if err := sig.ContentInitialized(context.Background(), c); err != nil {
		t.Errorf("ContentInitialized() error = %v", err)
	}
	if c.Body != "<p>x</p>" {
		t.Errorf("Body changed without listeners: %q", c.Body)
	}
}
