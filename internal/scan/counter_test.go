package scan

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDelta(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want int
	}{
		{"empty", "", 0},
		{"balanced", `\code{x} and \code{y}`, 0},
		{"open", `\title{Sum`, 1},
		{"close", "two}", -1},
		{"escaped braces still count", `\{`, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Delta(Braces, tt.in))
		})
	}
}

func TestCounterScan(t *testing.T) {
	t.Run("stops at transition through zero", func(t *testing.T) {
		c := NewCounter(Braces)
		c.Set(1)
		s := `Sum \code{x}} trailing}`
		i := c.Scan(s)
		assert.Equal(t, 12, i)
		assert.Equal(t, `Sum \code{x}`, s[:i])
		assert.Equal(t, 0, c.Depth())
	})

	t.Run("unterminated returns -1", func(t *testing.T) {
		c := NewCounter(Braces)
		c.Set(1)
		assert.Equal(t, -1, c.Scan("Broken {"))
		assert.Equal(t, 2, c.Depth())
	})

	t.Run("continues across calls", func(t *testing.T) {
		c := NewCounter(Braces)
		c.Set(1)
		assert.Equal(t, -1, c.Scan("first {line"))
		assert.Equal(t, -1, c.Scan("} second"))
		assert.Equal(t, 3, c.Scan("end} after"))
	})
}

func TestCodeCounter(t *testing.T) {
	t.Run("parens in strings are ignored", func(t *testing.T) {
		c := NewCodeCounter(Parens)
		c.FeedLine(`plot(x, main = "a (b")`)
		assert.True(t, c.Balanced())
	})

	t.Run("escaped quote does not close string", func(t *testing.T) {
		c := NewCodeCounter(Parens)
		c.FeedLine(`cat("say \"hi(")`)
		assert.True(t, c.Balanced())
	})

	t.Run("open string spans lines", func(t *testing.T) {
		c := NewCodeCounter(Parens)
		c.FeedLine(`x <- "multi`)
		assert.True(t, c.InString())
		c.FeedLine(`line)"`)
		assert.False(t, c.InString())
		assert.Equal(t, 0, c.Depth())
	})

	t.Run("comments are ignored until end of line", func(t *testing.T) {
		c := NewCodeCounter(Parens)
		c.FeedLine(`f(1) # it's (open`)
		assert.True(t, c.Balanced())
		c.FeedLine(`g(`)
		assert.Equal(t, 1, c.Depth())
	})

	t.Run("plain counter counts everything", func(t *testing.T) {
		c := NewCounter(Parens)
		c.FeedLine(`f(")")`)
		assert.Equal(t, -1, c.Depth())
	})
}

func TestGroup(t *testing.T) {
	inner, next, ok := Group(`\code{a{b}c} rest`, 5, Braces)
	assert.True(t, ok)
	assert.Equal(t, "a{b}c", inner)
	assert.Equal(t, 12, next)

	_, _, ok = Group(`\code{never`, 5, Braces)
	assert.False(t, ok)

	_, next, ok = Group("abc", 0, Braces)
	assert.False(t, ok)
	assert.Equal(t, 0, next)

	_, _, ok = Group("{", 5, Braces)
	assert.False(t, ok)
}

func BenchmarkCounterScan(b *testing.B) {
	s := `\description{Adds \code{x} and \code{y} with \link[base]{sum}.}`
	for i := 0; i < b.N; i++ {
		c := NewCounter(Braces)
		c.Scan(s)
	}
}
