package session

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/glosskit/gloss/internal/wizard"
	"github.com/glosskit/gloss/pkg/domain"
)

type nullEditor struct{}

func (nullEditor) RetrieveFullText(context.Context, string, *int) (domain.SectionText, error) {
	return domain.SectionText{}, nil
}
func (nullEditor) AppendToSection(context.Context, string, int, string, string) error { return nil }
func (nullEditor) ReplaceSectionText(context.Context, string, int, string, string, *domain.SectionTimestamps) error {
	return nil
}
func (nullEditor) Render(context.Context, string, string) string { return "" }
func (nullEditor) CompareDiff(context.Context, string, string) (string, error) {
	return "", nil
}

func TestAcquire_ReleasesPreviousHolder(t *testing.T) {
	m := NewManager()

	first := m.Acquire(wizard.New(nullEditor{}))
	require.True(t, first.Wizard().IsOpen())

	second := m.Acquire(wizard.New(nullEditor{}))
	assert.False(t, first.Wizard().IsOpen(), "acquiring tears down the previous dialog")
	assert.True(t, second.Wizard().IsOpen())
	assert.NotEqual(t, first.ID(), second.ID())
}

func TestWith_NoActiveDialog(t *testing.T) {
	m := NewManager()

	ok, err := m.With(func(*Dialog) error { t.Fatal("must not run"); return nil })
	assert.False(t, ok)
	assert.NoError(t, err)
}

func TestWith_SkipsClosedDialog(t *testing.T) {
	m := NewManager()
	d := m.Acquire(wizard.New(nullEditor{}))
	d.Wizard().Close()

	ok, _ := m.With(func(*Dialog) error { return nil })
	assert.False(t, ok)
}

func TestRelease_StaleHandleIsNoop(t *testing.T) {
	m := NewManager()
	first := m.Acquire(wizard.New(nullEditor{}))
	second := m.Acquire(wizard.New(nullEditor{}))

	m.Release(first)
	assert.True(t, second.Wizard().IsOpen(), "a stale release must not close the new holder")

	m.Release(second)
	assert.False(t, second.Wizard().IsOpen())

	ok, _ := m.With(func(*Dialog) error { return nil })
	assert.False(t, ok)
}

func TestWith_SerializesCallers(t *testing.T) {
	m := NewManager()
	m.Acquire(wizard.New(nullEditor{}))

	var wg sync.WaitGroup
	active := 0
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			m.With(func(d *Dialog) error {
				active++
				defer func() { active-- }()
				assert.Equal(t, 1, active, "dialog access must be exclusive")
				d.Wizard().AddChapter()
				return nil
			})
		}()
	}
	wg.Wait()
}
