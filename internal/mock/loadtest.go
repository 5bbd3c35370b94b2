package mock

import (
	"context"
	"math"
	"slices"
	"sync"
	"time"

	"github.com/sadopc/apitrack/internal/tracker"
)

// ProbeFunc performs one call against the endpoint under test.
type ProbeFunc func(ctx context.Context) Probe

type sample struct {
	at   time.Time
	code int
	secs float64
}

// RunLoadTest runs users concurrent workers, each calling probe back to back
// until window elapses or ctx is done. Samples are grouped per second.
func RunLoadTest(ctx context.Context, probe ProbeFunc, users int, window time.Duration) tracker.LoadTestResult {
	ctx, cancel := context.WithTimeout(ctx, window)
	defer cancel()

	var (
		mu      sync.Mutex
		samples []sample
		wg      sync.WaitGroup
	)
	for range users {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for ctx.Err() == nil {
				start := time.Now()
				p := probe(ctx)
				if ctx.Err() != nil && p.Code == nil {
					// Cut off by the end of the window, not a real failure.
					return
				}
				s := sample{at: start, secs: p.Seconds()}
				if p.Code != nil {
					s.code = *p.Code
				}
				mu.Lock()
				samples = append(samples, s)
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	return summarize(samples, users)
}

func summarize(samples []sample, users int) tracker.LoadTestResult {
	r := tracker.LoadTestResult{UserCount: users, Responses: []tracker.LoadTestSample{}}
	if len(samples) == 0 {
		return r
	}

	r.MinResponseTime = math.Inf(1)
	var sum float64
	for _, s := range samples {
		r.MinResponseTime = min(r.MinResponseTime, s.secs)
		r.MaxResponseTime = max(r.MaxResponseTime, s.secs)
		sum += s.secs
	}
	r.AvgResponseTime = sum / float64(len(samples))

	type group struct {
		sum   float64
		n     int
		codes map[int]int
	}
	groups := map[time.Time]*group{}
	for _, s := range samples {
		key := s.at.UTC().Truncate(time.Second)
		g, ok := groups[key]
		if !ok {
			g = &group{codes: map[int]int{}}
			groups[key] = g
		}
		g.sum += s.secs
		g.n++
		g.codes[s.code]++
	}
	keys := make([]time.Time, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, time.Time.Compare)
	for _, k := range keys {
		g := groups[k]
		r.Responses = append(r.Responses, tracker.LoadTestSample{
			GroupStartTime: k,
			ResponseTime:   g.sum / float64(g.n),
			StatusCode:     modalCode(g.codes),
		})
	}
	return r
}

// modalCode picks the most frequent status code, preferring the lower code
// on ties.
func modalCode(codes map[int]int) int {
	best, bestN := 0, -1
	for code, n := range codes {
		if n > bestN || (n == bestN && code < best) {
			best, bestN = code, n
		}
	}
	return best
}
