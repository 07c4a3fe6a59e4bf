package audit

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

type fakeTool struct {
	descriptor Descriptor
	run        func(ctx context.Context, req Request) error
	calls      int
}

func (f *fakeTool) Descriptor() Descriptor { return f.descriptor }

func (f *fakeTool) Run(ctx context.Context, req Request) error {
	f.calls++
	if f.run != nil {
		return f.run(ctx, req)
	}
	return nil
}

func newFakeTool(name string) *fakeTool {
	return &fakeTool{descriptor: Descriptor{ConfigKey: name, DisplayName: name}}
}

func TestManagerRunAll(t *testing.T) {
	ctx := context.Background()

	t.Run("runs tools in registration order", func(t *testing.T) {
		var order []string
		m := NewManager()
		for _, id := range []string{"c", "a", "b"} {
			id := id
			tool := newFakeTool(id)
			tool.run = func(context.Context, Request) error {
				order = append(order, id)
				return nil
			}
			m.Register(ctx, id, tool)
		}

		summary := m.RunAll(ctx, Request{})

		assert.Equal(t, []string{"c", "a", "b"}, order)
		assert.Equal(t, Summary{Attempted: 3, Completed: 3}, summary)
	})

	t.Run("a failing tool does not stop the rest", func(t *testing.T) {
		first := newFakeTool("first")
		second := newFakeTool("second")
		second.run = func(context.Context, Request) error { return errors.New("boom") }
		third := newFakeTool("third")

		m := NewManager()
		m.Register(ctx, "first", first)
		m.Register(ctx, "second", second)
		m.Register(ctx, "third", third)

		summary := m.RunAll(ctx, Request{})

		assert.Equal(t, 1, first.calls)
		assert.Equal(t, 1, third.calls)
		assert.Equal(t, Summary{Attempted: 3, Completed: 2, Failed: 1}, summary)
	})

	t.Run("a panicking tool is caught and isolated", func(t *testing.T) {
		first := newFakeTool("first")
		second := newFakeTool("second")
		second.run = func(context.Context, Request) error { panic("unexpected collaborator fault") }
		third := newFakeTool("third")

		m := NewManager()
		m.Register(ctx, "first", first)
		m.Register(ctx, "second", second)
		m.Register(ctx, "third", third)

		summary := m.RunAll(ctx, Request{})

		assert.Equal(t, 1, third.calls)
		assert.Equal(t, Summary{Attempted: 3, Completed: 2, Failed: 1}, summary)
	})

	t.Run("no registered tools yields an empty summary", func(t *testing.T) {
		summary := NewManager().RunAll(ctx, Request{})
		assert.Equal(t, Summary{}, summary)
	})

	t.Run("request is passed through to tools", func(t *testing.T) {
		var got Request
		tool := newFakeTool("probe")
		tool.run = func(_ context.Context, req Request) error {
			got = req
			return nil
		}

		m := NewManager()
		m.Register(ctx, "probe", tool)
		m.RunAll(ctx, Request{ProjectID: "p1", DryRun: true, DeleteRequested: true})

		assert.Equal(t, "p1", got.ProjectID)
		assert.True(t, got.DryRun)
		assert.True(t, got.DeleteRequested)
	})
}

func TestManagerRegister(t *testing.T) {
	ctx := context.Background()

	t.Run("duplicate identifier overwrites and keeps first position", func(t *testing.T) {
		original := newFakeTool("original")
		replacement := newFakeTool("replacement")
		other := newFakeTool("other")

		m := NewManager()
		m.Register(ctx, "dup", original)
		m.Register(ctx, "other", other)
		m.Register(ctx, "dup", replacement)

		assert.Equal(t, []string{"dup", "other"}, m.IDs())

		m.RunAll(ctx, Request{})
		assert.Equal(t, 0, original.calls)
		assert.Equal(t, 1, replacement.calls)
		assert.Equal(t, 1, other.calls)
	})
}
