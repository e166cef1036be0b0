package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Prom は Prometheus を使ったメトリクス実装です。
type Prom struct {
	setNew      prometheus.Counter
	setUpdate   prometheus.Counter
	getHit      prometheus.Counter
	getMiss     prometheus.Counter
	evicted     prometheus.Counter
	ttlExpired  prometheus.Counter
	requeued    prometheus.Counter
	trackedSize prometheus.Gauge
}

// NewProm は Prometheus を使ったメトリクス実装を初期化し、reg に登録します。
// 同じ reg への二重登録はエラーになります。
func NewProm(namespace string, reg prometheus.Registerer) (*Prom, error) {
	makeC := func(name, help string) prometheus.Counter {
		return prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      name,
			Help:      help,
		})
	}
	makeG := func(name, help string) prometheus.Gauge {
		return prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      name,
			Help:      help,
		})
	}

	p := &Prom{
		setNew:      makeC("set_new_total", "Number of new keys set"),
		setUpdate:   makeC("set_update_total", "Number of keys updated"),
		getHit:      makeC("get_hit_total", "Number of cache hits"),
		getMiss:     makeC("get_miss_total", "Number of cache misses"),
		evicted:     makeC("evicted_total", "Number of evicted items"),
		ttlExpired:  makeC("ttl_expired_total", "Number of TTL expired items"),
		requeued:    makeC("eviction_requeued_total", "Number of eviction candidates requeued after a failed eviction"),
		trackedSize: makeG("eviction_tracked_size", "Current number of keys tracked by the eviction policy"),
	}

	for _, c := range []prometheus.Collector{
		p.setNew, p.setUpdate, p.getHit, p.getMiss, p.evicted, p.ttlExpired, p.requeued, p.trackedSize,
	} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return p, nil
}

// IncSetNew は新しいキーが追加されたことをカウントします。
func (p *Prom) IncSetNew() { p.setNew.Inc() }

// IncSetUpdate は既存のキーが更新されたことをカウントします。
func (p *Prom) IncSetUpdate() { p.setUpdate.Inc() }

// IncGetHit はキャッシュヒットをカウントします。
func (p *Prom) IncGetHit() { p.getHit.Inc() }

// IncGetMiss はキャッシュミスをカウントします。
func (p *Prom) IncGetMiss() { p.getMiss.Inc() }

// AddEvicted は追い出されたアイテムの数を加算します。
func (p *Prom) AddEvicted(n int) {
	if n > 0 {
		p.evicted.Add(float64(n))
	}
}

// AddTTLExpired はTTLが期限切れになったアイテムの数を加算します。
func (p *Prom) AddTTLExpired(n int) {
	if n > 0 {
		p.ttlExpired.Add(float64(n))
	}
}

// IncRequeued は候補に戻されたエントリをカウントします。
func (p *Prom) IncRequeued() { p.requeued.Inc() }

// SetTrackedSize は追跡中の候補数を設定します。
func (p *Prom) SetTrackedSize(n int) {
	if n >= 0 {
		p.trackedSize.Set(float64(n))
	}
}
