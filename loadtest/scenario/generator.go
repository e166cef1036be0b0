package scenario

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"net/http"
	"sync"

	vegeta "github.com/tsenart/vegeta/v12/lib"
)

// Options は Generator の負荷配分です。比率は 0..1 に丸められます。
// 先に AdminRatio、次に PinRatio で分岐し、残りを ReadRatio で GET と PUT に分けます。
type Options struct {
	BaseURL    string
	Keys       int
	ReadRatio  float64
	PinRatio   float64
	AdminRatio float64
	ValueSize  int
	TTLRatio   float64
	TTLms      int
	ReadOnly   bool
	Seed       int64
}

// Generator は 負荷試験のターゲットを生成する構造体です。
type Generator struct {
	opt Options

	mu  sync.Mutex
	rnd *rand.Rand
	buf []byte
}

// NewGenerator は opt に基づいて新しい Generator を作成します。
func NewGenerator(opt Options) *Generator {
	opt.ReadRatio = clamp(opt.ReadRatio, 0, 1)
	opt.PinRatio = clamp(opt.PinRatio, 0, 1)
	opt.AdminRatio = clamp(opt.AdminRatio, 0, 1)
	opt.TTLRatio = clamp(opt.TTLRatio, 0, 1)
	if opt.Keys < 1 {
		opt.Keys = 1
	}
	return &Generator{
		opt: opt,
		rnd: rand.New(rand.NewSource(opt.Seed)),
		buf: make([]byte, opt.ValueSize),
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

var adminPaths = []string{
	"/admin/eviction",
	"/admin/eviction/candidates?limit=10",
}

// Targeter は vegeta.Targeter を返します。
func (g *Generator) Targeter() vegeta.Targeter {
	return func(t *vegeta.Target) error {
		g.mu.Lock()
		defer g.mu.Unlock()

		t.Body = nil
		t.Header = nil

		if g.rnd.Float64() < g.opt.AdminRatio {
			t.Method = http.MethodGet
			t.URL = g.opt.BaseURL + adminPaths[g.rnd.Intn(len(adminPaths))]
			return nil
		}

		key := fmt.Sprintf("k%06d", g.rnd.Intn(g.opt.Keys))
		kvURL := fmt.Sprintf("%s/kvs/%s", g.opt.BaseURL, key)

		if !g.opt.ReadOnly && g.rnd.Float64() < g.opt.PinRatio {
			t.URL = kvURL + "/pin"
			t.Method = http.MethodPost
			if g.rnd.Intn(2) == 0 {
				t.Method = http.MethodDelete
			}
			return nil
		}

		if g.opt.ReadOnly || g.rnd.Float64() < g.opt.ReadRatio {
			t.Method = http.MethodGet
			t.URL = kvURL
			return nil
		}

		fillRandomLetters(g.rnd, g.buf)
		bodyObj := map[string]any{
			"value": string(g.buf),
		}
		if g.opt.TTLms > 0 && g.rnd.Float64() < g.opt.TTLRatio {
			bodyObj["ttl_ms"] = g.opt.TTLms
		}
		b, err := json.Marshal(bodyObj)
		if err != nil {
			return err
		}
		t.Method = http.MethodPut
		t.URL = kvURL
		t.Body = b
		t.Header = http.Header{"Content-Type": []string{"application/json"}}
		return nil
	}
}

func fillRandomLetters(r *rand.Rand, buf []byte) {
	const letters = "abcdefghijklmnopqrstuvwxyz0123456789"
	for i := range buf {
		buf[i] = letters[r.Intn(len(letters))]
	}
}
