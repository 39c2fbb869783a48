// Package poller drives the fixed-interval account polling loop.
package poller

import (
	"errors"
	"log"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/p7g/wealthsimple-prometheus/internal/auth"
	"github.com/p7g/wealthsimple-prometheus/internal/metrics"
	"github.com/p7g/wealthsimple-prometheus/internal/repository"
	"github.com/p7g/wealthsimple-prometheus/internal/wealthsimple"
)

// DefaultInterval is the pause between successful poll cycles.
const DefaultInterval = 300 * time.Second

// Service polls the accounts endpoint and publishes balance gauges. It is a
// single sequential loop; accounts are processed one at a time and the only
// shared state it touches is the metrics sink.
type Service struct {
	client   *wealthsimple.Client
	sessions *auth.Manager
	sink     *metrics.Sink
	history  *repository.PollHistoryRepository // nil disables history recording
	interval time.Duration

	sleep func(time.Duration) // injectable for deterministic tests
}

// New creates a poller. history may be nil.
func New(client *wealthsimple.Client, sessions *auth.Manager, sink *metrics.Sink, history *repository.PollHistoryRepository, interval time.Duration) *Service {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Service{
		client:   client,
		sessions: sessions,
		sink:     sink,
		history:  history,
		interval: interval,
		sleep:    time.Sleep,
	}
}

// Run executes poll cycles until a fatal error occurs. Session expiry is
// recovered inside the cycle; transport errors and unexpected statuses are
// returned and should terminate the process.
func (s *Service) Run(session *wealthsimple.Session) error {
	for {
		next, err := s.cycle(session)
		if err != nil {
			return err
		}
		session = next
		s.sleep(s.interval)
	}
}

// cycle runs one poll cycle. On a 401 it re-authenticates exactly once and
// retries immediately, without advancing the poll clock; the returned
// session is whichever one the successful fetch used.
func (s *Service) cycle(session *wealthsimple.Session) (*wealthsimple.Session, error) {
	historyID := s.startHistory()

	for {
		accounts, err := s.client.GetAccounts(session)
		if errors.Is(err, wealthsimple.ErrSessionExpired) {
			log.Printf("[Poller] Got 401, need to log in again: %v", err)
			session, err = s.reauthenticate()
			if err != nil {
				s.failHistory(historyID, err)
				return nil, err
			}
			continue
		}
		if err != nil {
			s.failHistory(historyID, err)
			return nil, err
		}

		for i := range accounts {
			s.publish(&accounts[i])
		}

		s.completeHistory(historyID, len(accounts))
		return session, nil
	}
}

// reauthenticate obtains a fresh session using the retained credentials.
// Rejected logins re-prompt and retry without bound or backoff, matching
// the original exporter; any other failure is fatal.
func (s *Service) reauthenticate() (*wealthsimple.Session, error) {
	for {
		session, err := s.sessions.Authenticate()
		if err == nil {
			return session, nil
		}
		if !errors.Is(err, wealthsimple.ErrAuthenticationFailed) {
			return nil, err
		}
		log.Printf("[Poller] Re-authentication failed, trying again: %v", err)
	}
}

// publish sets the four balance gauges for one account. A field whose
// amount does not parse as a number is skipped, leaving that gauge at its
// previous value.
func (s *Service) publish(account *wealthsimple.Account) {
	id := account.ID
	accountType := account.Type
	name := account.DisplayName()

	setIfNumeric(s.sink.Deposited, account.TotalDeposits, id, accountType, name)
	setIfNumeric(s.sink.Withdrawn, account.TotalWithdrawals, id, accountType, name)
	setIfNumeric(s.sink.NetLiquidation, account.NetLiquidation, id, accountType, name)
	setIfNumeric(s.sink.GrossPosition, account.GrossPosition, id, accountType, name)
}

func setIfNumeric(gauge *prometheus.GaugeVec, amount wealthsimple.Amount, labelValues ...string) {
	value, err := strconv.ParseFloat(amount.Amount, 64)
	if err != nil {
		return
	}
	gauge.WithLabelValues(labelValues...).Set(value)
}

func (s *Service) startHistory() int64 {
	if s.history == nil {
		return 0
	}
	id, err := s.history.Start()
	if err != nil {
		log.Printf("[Poller] Failed to record poll start: %v", err)
		return 0
	}
	return id
}

func (s *Service) completeHistory(id int64, accountsPolled int) {
	if s.history == nil || id == 0 {
		return
	}
	if err := s.history.Complete(id, accountsPolled); err != nil {
		log.Printf("[Poller] Failed to record poll completion: %v", err)
	}
}

func (s *Service) failHistory(id int64, cause error) {
	if s.history == nil || id == 0 {
		return
	}
	if err := s.history.Fail(id, cause.Error()); err != nil {
		log.Printf("[Poller] Failed to record poll failure: %v", err)
	}
}
