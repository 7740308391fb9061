package goroutine

import (
	"context"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
)

func TestSafeGoRecoversPanic(t *testing.T) {
	log, hook := test.NewNullLogger()
	rh := NewRecoveryHandler(log)

	rh.SafeGo(func() {
		panic("boom")
	})

	assert.Eventually(t, func() bool {
		return len(hook.AllEntries()) == 1
	}, time.Second, 10*time.Millisecond)

	entry := hook.LastEntry()
	assert.Equal(t, logrus.ErrorLevel, entry.Level)
	assert.Contains(t, entry.Message, "boom")
	assert.NotEmpty(t, entry.Data["stack"])
}

func TestSafeGoWithContextPassesContext(t *testing.T) {
	log, hook := test.NewNullLogger()
	rh := NewRecoveryHandler(log)

	type key struct{}
	ctx := context.WithValue(context.Background(), key{}, "lost-42")
	got := make(chan interface{}, 1)

	rh.SafeGoWithContext(ctx, func(ctx context.Context) {
		got <- ctx.Value(key{})
	})

	select {
	case v := <-got:
		assert.Equal(t, "lost-42", v)
	case <-time.After(time.Second):
		t.Fatal("горутина не запустилась")
	}
	assert.Empty(t, hook.AllEntries())
}
