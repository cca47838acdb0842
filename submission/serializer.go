// Package submission implements the Submission Serializer: a bounded,
// single-consumer queue that turns a TransactionRequest into a future
// transaction hash while guaranteeing that nonces assigned to a single
// sender strictly increase, regardless of how many other requests are
// enqueued concurrently for other senders.
package submission

import (
	"context"
	"sync"

	"github.com/fforbeck/eth-propeller-core/apierror"
	"github.com/fforbeck/eth-propeller-core/backend"
	tplog "github.com/fforbeck/eth-propeller-core/log"
	"github.com/fforbeck/eth-propeller-core/future"
	"github.com/fforbeck/eth-propeller-core/noncetracker"
	"github.com/fforbeck/eth-propeller-core/values"
)

type job struct {
	req    values.TransactionRequest
	key    values.Hash
	future *future.Future[values.Hash]
}

// Serializer is the single writer of nonce-bearing submissions for every
// account it serves. There is exactly one worker goroutine draining the
// internal queue; that single-writer property is what lets §5's
// submissionLock be realised as "there is only ever one goroutine inside
// process()" rather than an explicit mutex around steps 2-4.
type Serializer struct {
	log      tplog.Logger
	ethereum backend.Backend
	nonces   *noncetracker.Tracker

	queue chan job

	mu           sync.Mutex
	futures      map[values.Hash]*future.Future[values.Hash]
	senderByHash map[values.Hash]values.Address

	stopOnce sync.Once
	stopCh   chan struct{}
	doneCh   chan struct{}
}

// New builds a Serializer with the given bounded queue capacity. Start
// must be called once before any Submit call can make progress.
func New(log tplog.Logger, ethereum backend.Backend, nonces *noncetracker.Tracker, capacity int) *Serializer {
	return &Serializer{
		log:          log,
		ethereum:     ethereum,
		nonces:       nonces,
		queue:        make(chan job, capacity),
		futures:      make(map[values.Hash]*future.Future[values.Hash]),
		senderByHash: make(map[values.Hash]values.Address),
		stopCh:       make(chan struct{}),
		doneCh:       make(chan struct{}),
	}
}

// Start launches the single consumer goroutine. ctx bounds the worker's
// lifetime in addition to Stop.
func (s *Serializer) Start(ctx context.Context) {
	go s.run(ctx)
}

// Stop signals the worker to exit after the currently in-flight request
// (if any) completes, and blocks until it has.
func (s *Serializer) Stop() {
	s.stopOnce.Do(func() { close(s.stopCh) })
	<-s.doneCh
}

// Submit enqueues req for nonce assignment and backend submission,
// returning a future that resolves to the canonical transaction hash.
// If an equal request is already pending, its existing future is
// returned instead and nothing new is enqueued (idempotent enqueue, per
// §3's "exactly one submission future per live TransactionRequest
// identity" invariant).
func (s *Serializer) Submit(req values.TransactionRequest) (*future.Future[values.Hash], error) {
	key := req.ContentHash()

	s.mu.Lock()
	if f, ok := s.futures[key]; ok {
		s.mu.Unlock()
		return f, nil
	}
	f := future.New[values.Hash]()
	s.futures[key] = f
	s.mu.Unlock()

	j := job{req: req, key: key, future: f}
	select {
	case s.queue <- j:
		return f, nil
	default:
		s.mu.Lock()
		delete(s.futures, key)
		s.mu.Unlock()
		return nil, &apierror.BackpressureExceeded{}
	}
}

func (s *Serializer) run(ctx context.Context) {
	defer close(s.doneCh)
	for {
		select {
		case <-ctx.Done():
			return
		case <-s.stopCh:
			return
		case j := <-s.queue:
			s.process(ctx, j)
		}
	}
}

func (s *Serializer) process(ctx context.Context, j job) {
	nonce, err := s.nonces.GetNonce(ctx, j.req.Account)
	if err != nil {
		s.fail(j, err)
		return
	}

	s.log.Debugf("submitting transaction for %s with nonce %d", j.req.Account, nonce.Uint64())

	hash, err := s.ethereum.Submit(ctx, j.req, nonce)
	if err != nil {
		s.fail(j, err)
		return
	}

	s.nonces.RecordPending(j.req.Account, hash)

	s.mu.Lock()
	s.senderByHash[hash] = j.req.Account
	s.mu.Unlock()

	s.complete(j, hash)
}

// Settle reconciles the nonce tracker with a terminal transaction-status
// update observed on the Event Handler's stream: a mined receipt (whether
// successful or reverted) or a dropped notification both free up the
// nonce they occupied. Hashes this Serializer never submitted, and
// non-terminal updates (no receipt and not dropped), are silently
// ignored, so callers can forward every update unfiltered.
func (s *Serializer) Settle(ctx context.Context, info values.TransactionInfo) {
	terminal := info.Status == values.StatusDropped || info.Receipt != nil

	s.mu.Lock()
	sender, ok := s.senderByHash[info.Hash]
	if ok && terminal {
		delete(s.senderByHash, info.Hash)
	}
	s.mu.Unlock()
	if !ok || !terminal {
		return
	}

	switch {
	case info.Status == values.StatusDropped:
		if err := s.nonces.OnDropped(ctx, values.TransactionReceipt{Hash: info.Hash, Sender: sender}); err != nil {
			s.log.Warnf("failed to settle dropped nonce for %s: %v", sender, err)
		}
	case info.Receipt != nil:
		receipt := *info.Receipt
		receipt.Sender = sender
		if err := s.nonces.OnMined(ctx, receipt); err != nil {
			s.log.Warnf("failed to settle mined nonce for %s: %v", sender, err)
		}
	}
}

func (s *Serializer) complete(j job, hash values.Hash) {
	s.mu.Lock()
	delete(s.futures, j.key)
	s.mu.Unlock()
	j.future.Complete(hash)
}

func (s *Serializer) fail(j job, err error) {
	s.log.Errorf("submission failed for %s: %v", j.req.Account, err)
	s.mu.Lock()
	delete(s.futures, j.key)
	s.mu.Unlock()
	j.future.Fail(&apierror.BackendError{Cause: err})
}

// Pending reports how many requests are currently enqueued or being
// tracked for an in-flight future. Exposed for tests and diagnostics.
func (s *Serializer) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.futures)
}
