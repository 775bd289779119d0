package tokenizer

import (
	"fmt"
	"sync"

	"github.com/pkoukk/tiktoken-go"

	"github.com/yanqian/twilight-hud/internal/domain/story"
)

const fallbackEncoding = "cl100k_base"

// Counter estimates token counts with the tiktoken encoding of a model. The
// encoding is loaded on first use.
type Counter struct {
	model string

	once sync.Once
	enc  *tiktoken.Tiktoken
	err  error
}

// NewCounter builds a counter for model.
func NewCounter(model string) *Counter {
	return &Counter{model: model}
}

// Count returns the number of tokens in text.
func (c *Counter) Count(text string) (int, error) {
	c.once.Do(c.load)
	if c.err != nil {
		return 0, c.err
	}
	return len(c.enc.Encode(text, nil, nil)), nil
}

func (c *Counter) load() {
	enc, err := tiktoken.EncodingForModel(c.model)
	if err == nil {
		c.enc = enc
		return
	}
	enc, fallbackErr := tiktoken.GetEncoding(fallbackEncoding)
	if fallbackErr != nil {
		c.err = fmt.Errorf("load tiktoken encoding for %s: %w", c.model, fallbackErr)
		return
	}
	c.enc = enc
}

var _ story.TokenCounter = (*Counter)(nil)
