package words

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"os"
	"strings"
	"sync"
	"time"
	"unicode/utf8"
)

var ErrEmptyTier = errors.New("no words in tier")

// Catalog holds the loaded words split by difficulty.
// The word lists never change after construction; only the random source
// is guarded, since sessions pick words concurrently.
type Catalog struct {
	tiers map[Tier][]string

	mu  sync.Mutex
	rng *rand.Rand
}

type Option func(*Catalog)

// WithRand replaces the time-seeded random source.
func WithRand(rng *rand.Rand) Option {
	return func(c *Catalog) { c.rng = rng }
}

func newCatalog(opts ...Option) *Catalog {
	c := &Catalog{
		tiers: map[Tier][]string{Easy: nil, Medium: nil, Hard: nil},
		rng:   rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Load reads one word per line. Surrounding whitespace is stripped and
// lines left empty are skipped.
func Load(r io.Reader, opts ...Option) (*Catalog, error) {
	c := newCatalog(opts...)
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		c.add(sc.Text())
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read words: %w", err)
	}
	return c, nil
}

func LoadFile(path string, opts ...Option) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open word list: %w", err)
	}
	defer f.Close()
	return Load(f, opts...)
}

// FromWords classifies an in-memory list with the same rules as Load.
func FromWords(list []string, opts ...Option) *Catalog {
	c := newCatalog(opts...)
	for _, w := range list {
		c.add(w)
	}
	return c
}

func (c *Catalog) add(line string) {
	w := strings.TrimSpace(line)
	t, ok := TierFor(utf8.RuneCountInString(w))
	if !ok {
		return
	}
	c.tiers[t] = append(c.tiers[t], w)
}

// PickRandom returns a uniformly chosen word of the tier.
func (c *Catalog) PickRandom(t Tier) (string, error) {
	list := c.tiers[t]
	if len(list) == 0 {
		return "", fmt.Errorf("%s: %w", t, ErrEmptyTier)
	}
	c.mu.Lock()
	i := c.rng.Intn(len(list))
	c.mu.Unlock()
	return list[i], nil
}

func (c *Catalog) Words(t Tier) []string {
	return append([]string(nil), c.tiers[t]...)
}

func (c *Catalog) Len(t Tier) int {
	return len(c.tiers[t])
}

func (c *Catalog) Total() int {
	n := 0
	for _, list := range c.tiers {
		n += len(list)
	}
	return n
}
