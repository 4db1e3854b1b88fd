package replica

//
//Copyright 2019 Telenor Digital AS
//
//Licensed under the Apache License, Version 2.0 (the "License");
//you may not use this file except in compliance with the License.
//You may obtain a copy of the License at
//
//http://www.apache.org/licenses/LICENSE-2.0
//
//Unless required by applicable law or agreed to in writing, software
//distributed under the License is distributed on an "AS IS" BASIS,
//WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
//See the License for the specific language governing permissions and
//limitations under the License.
//
import (
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

type healthState struct {
	healthy     bool
	unhealthyAt time.Time
	lag         time.Duration
	hasLag      bool
}

// HealthTracker tracks per-replica health and replication lag. Health
// reports come from the call sites that actually talk to the replicas
// (connection success or failure); the tracker itself never probes
// anything. The tracker is an explicitly owned component - construct one
// and hand it to the selectors that need it rather than sharing process
// globals. Safe for concurrent use.
type HealthTracker struct {
	mutex         sync.RWMutex
	replicas      map[string]*healthState
	recoveryDelay time.Duration
	now           func() time.Time
}

// NewHealthTracker creates a tracker. An unhealthy replica is not
// reconsidered for selection until recoveryDelay has elapsed since it was
// marked unhealthy, even without an explicit MarkHealthy call. The delay
// prevents flapping under intermittent failures.
func NewHealthTracker(recoveryDelay time.Duration) *HealthTracker {
	return &HealthTracker{
		replicas:      make(map[string]*healthState),
		recoveryDelay: recoveryDelay,
		now:           time.Now,
	}
}

func (t *HealthTracker) state(id string) *healthState {
	s, ok := t.replicas[id]
	if !ok {
		// Unknown replicas start out healthy; the first failure report
		// will flip them.
		s = &healthState{healthy: true}
		t.replicas[id] = s
	}
	return s
}

// MarkHealthy reports a successful interaction with the replica.
func (t *HealthTracker) MarkHealthy(id string) {
	t.mutex.Lock()
	defer t.mutex.Unlock()
	s := t.state(id)
	if !s.healthy {
		logrus.WithField("replica", id).Info("Replica marked healthy")
	}
	s.healthy = true
	s.unhealthyAt = time.Time{}
}

// MarkUnhealthy reports a failed interaction with the replica.
func (t *HealthTracker) MarkUnhealthy(id string) {
	t.mutex.Lock()
	defer t.mutex.Unlock()
	s := t.state(id)
	if s.healthy {
		logrus.WithField("replica", id).Warning("Replica marked unhealthy")
	}
	s.healthy = false
	s.unhealthyAt = t.now()
}

// ReportLag records the last observed replication lag for the replica.
func (t *HealthTracker) ReportLag(id string, lag time.Duration) {
	t.mutex.Lock()
	defer t.mutex.Unlock()
	s := t.state(id)
	s.lag = lag
	s.hasLag = true
}

// IsEligible reports whether the replica may be selected: it is healthy,
// or it has been unhealthy for longer than the recovery delay.
func (t *HealthTracker) IsEligible(id string) bool {
	t.mutex.RLock()
	defer t.mutex.RUnlock()
	return t.eligible(id)
}

func (t *HealthTracker) eligible(id string) bool {
	s, ok := t.replicas[id]
	if !ok {
		return true
	}
	if s.healthy {
		return true
	}
	return t.now().Sub(s.unhealthyAt) >= t.recoveryDelay
}

// Healthy filters the candidates down to the ones eligible for selection.
func (t *HealthTracker) Healthy(candidates []string) []string {
	t.mutex.RLock()
	defer t.mutex.RUnlock()
	var ret []string
	for _, id := range candidates {
		if t.eligible(id) {
			ret = append(ret, id)
		}
	}
	return ret
}

// Fresh filters the candidates down to the ones whose last reported
// replication lag is within maxLag. Replicas without a lag report pass; a
// zero or negative maxLag disables the filter.
func (t *HealthTracker) Fresh(candidates []string, maxLag time.Duration) []string {
	if maxLag <= 0 {
		return candidates
	}
	t.mutex.RLock()
	defer t.mutex.RUnlock()
	var ret []string
	for _, id := range candidates {
		s, ok := t.replicas[id]
		if !ok || !s.hasLag || s.lag <= maxLag {
			ret = append(ret, id)
		}
	}
	return ret
}
