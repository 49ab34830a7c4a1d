package assets

import (
	"math/rand"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
)

// Pool names under the assets directory
const (
	PoolBadges     = "badges"
	PoolSignatures = "signatures"
)

// SeasonalPrefix marks badges reserved for new-year themed certificates
const SeasonalPrefix = "new-year"

var seasonalKeywords = []string{
	"new year",
	"new-year",
	"christmas",
	"xmas",
	"новий рік",
	"новорічн",
	"різдв",
}

var imageExtensions = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
}

// Picker selects random images from asset pools. Missing or empty pools yield "".
type Picker struct {
	root string
	mu   sync.Mutex
	rng  *rand.Rand
}

// NewPicker creates a picker over root. A nil rng gets a randomly seeded source.
func NewPicker(root string, rng *rand.Rand) *Picker {
	if rng == nil {
		rng = rand.New(rand.NewSource(rand.Int63()))
	}
	return &Picker{root: root, rng: rng}
}

// IsSeasonal reports whether text mentions any new-year keyword
func IsSeasonal(text string) bool {
	lower := strings.ToLower(text)
	for _, kw := range seasonalKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// Badge picks a badge for a certificate about item. Seasonal items only get
// seasonal badges and other items never do.
func (p *Picker) Badge(item string) string {
	seasonal := IsSeasonal(item)
	return p.pick(PoolBadges, func(name string) bool {
		return strings.HasPrefix(strings.ToLower(name), SeasonalPrefix) == seasonal
	})
}

// Signature picks any signature image
func (p *Picker) Signature() string {
	return p.pick(PoolSignatures, nil)
}

// List returns the sorted image file names of a pool
func (p *Picker) List(pool string) []string {
	entries, err := os.ReadDir(filepath.Join(p.root, pool))
	if err != nil {
		return nil
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if imageExtensions[strings.ToLower(filepath.Ext(e.Name()))] {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return names
}

func (p *Picker) pick(pool string, keep func(string) bool) string {
	var candidates []string
	for _, name := range p.List(pool) {
		if keep == nil || keep(name) {
			candidates = append(candidates, name)
		}
	}
	if len(candidates) == 0 {
		return ""
	}

	p.mu.Lock()
	i := p.rng.Intn(len(candidates))
	p.mu.Unlock()

	return filepath.Join(p.root, pool, candidates[i])
}
