package pairing

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/nfrund/pairchat/internal/pubsub"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingPublisher captures published messages for assertions.
type recordingPublisher struct {
	mu       sync.Mutex
	messages []pubsub.Message
	err      error
}

func (p *recordingPublisher) Publish(_ context.Context, msg pubsub.Message) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.messages = append(p.messages, msg)
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) topics() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.messages))
	for _, m := range p.messages {
		out = append(out, m.Topic)
	}
	return out
}

func connect(t *testing.T, e *Engine, problemID string) (*Session, *fakeConn) {
	t.Helper()
	conn := &fakeConn{}
	s := e.NewSession(problemID, conn)
	require.NoError(t, e.Connect(context.Background(), s))
	return s, conn
}

func TestEngine_FirstConnectWaits(t *testing.T) {
	e := NewEngine()
	a, connA := connect(t, e, "p1")

	assert.Equal(t, RoleInitiator, a.Role())
	assert.Equal(t, StateWaiting, a.State())
	assert.Nil(t, a.Partner())

	assert.Equal(t, []ChatMessage{{Message: NoticeSearching, Username: SystemUsername}}, connA.chats())
	assert.Equal(t, []int{1}, connA.counts())

	snap := e.Snapshot("p1")
	assert.Equal(t, 1, snap.Active)
	assert.Equal(t, []string{a.ID}, snap.SessionIDs)
}

func TestEngine_SecondConnectPairs(t *testing.T) {
	e := NewEngine()
	a, connA := connect(t, e, "p1")
	connA.reset()

	b, connB := connect(t, e, "p1")

	assert.Equal(t, RoleResponder, b.Role())
	assert.Equal(t, StatePaired, a.State())
	assert.Equal(t, StatePaired, b.State())
	assert.Same(t, b, a.Partner())
	assert.Same(t, a, b.Partner())

	matched := ChatMessage{Message: NoticeMatched, Username: SystemUsername}
	assert.Equal(t, []ChatMessage{matched}, connA.chats())
	assert.Equal(t, []ChatMessage{matched}, connB.chats())

	// Both sides end up with a count of 2.
	assert.Equal(t, []int{2}, connA.counts())
	assert.Equal(t, []int{2}, connB.counts())
}

func TestEngine_ThirdConnectWaits(t *testing.T) {
	e := NewEngine()
	a, connA := connect(t, e, "p1")
	b, connB := connect(t, e, "p1")
	connA.reset()
	connB.reset()

	c, connC := connect(t, e, "p1")

	assert.Equal(t, RoleInitiator, c.Role())
	assert.Equal(t, StateWaiting, c.State())
	assert.Nil(t, c.Partner())
	assert.Same(t, b, a.Partner(), "existing pair untouched")

	assert.Equal(t, []ChatMessage{{Message: NoticeSearching, Username: SystemUsername}}, connC.chats())
	assert.Equal(t, 3, connA.lastCount())
	assert.Equal(t, 3, connB.lastCount())
	assert.Equal(t, 3, connC.lastCount())
	assert.Empty(t, connA.chats())

	_, connD := connect(t, e, "p1")
	assert.Equal(t, []ChatMessage{{Message: NoticeMatched, Username: SystemUsername}}, connD.chats())
	assert.Equal(t, []ChatMessage{
		{Message: NoticeSearching, Username: SystemUsername},
		{Message: NoticeMatched, Username: SystemUsername},
	}, connC.chats())
}

func TestEngine_ProblemsAreIsolated(t *testing.T) {
	e := NewEngine()
	a, _ := connect(t, e, "p1")
	b, connB := connect(t, e, "p2")

	assert.Nil(t, a.Partner())
	assert.Nil(t, b.Partner())
	assert.Equal(t, []int{1}, connB.counts())
	assert.Equal(t, map[string]int{"p1": 1, "p2": 1}, e.ActiveCounts())
}

func TestEngine_DisconnectNotifiesPartner(t *testing.T) {
	ctx := context.Background()
	e := NewEngine()
	a, connA := connect(t, e, "p1")
	b, connB := connect(t, e, "p1")
	connA.reset()

	e.Disconnect(ctx, b)

	assert.Equal(t, StateDisconnected, b.State())
	assert.Nil(t, b.Partner())
	assert.Nil(t, a.Partner())
	assert.Equal(t, StateWaiting, a.State())
	assert.Equal(t, RoleInitiator, a.Role(), "survivor keeps its role")

	assert.Equal(t, []ChatMessage{{Message: NoticePartnerLeft, Username: SystemUsername}}, connA.chats())
	assert.Equal(t, []int{1}, connA.counts())

	// Later messages from the survivor only echo.
	connA.reset()
	connB.reset()
	require.NoError(t, e.Relay(ctx, a, []byte(`{"message":"anyone?"}`)))
	assert.Equal(t, []ChatMessage{{Message: "anyone?", Username: string(RoleInitiator)}}, connA.chats())
	assert.Empty(t, connB.payloads)
}

func TestEngine_DisconnectCleansUpEntries(t *testing.T) {
	ctx := context.Background()
	e := NewEngine()
	a, _ := connect(t, e, "p1")
	b, _ := connect(t, e, "p1")

	e.Disconnect(ctx, a)
	snap := e.Snapshot("p1")
	assert.Equal(t, 1, snap.Active)
	assert.Equal(t, []string{b.ID}, snap.SessionIDs)

	e.Disconnect(ctx, b)
	snap = e.Snapshot("p1")
	assert.Equal(t, 0, snap.Active)
	assert.False(t, snap.HasCount, "count entry removed at zero")
	assert.False(t, snap.HasQueue, "sequence entry removed when empty")
	assert.Empty(t, e.ActiveCounts())
}

func TestEngine_DisconnectIsIdempotent(t *testing.T) {
	ctx := context.Background()
	e := NewEngine()
	a, _ := connect(t, e, "p1")
	_, connB := connect(t, e, "p1")
	connB.reset()

	e.Disconnect(ctx, a)
	e.Disconnect(ctx, a)

	assert.Equal(t, 1, e.Snapshot("p1").Active)
	assert.Equal(t, []ChatMessage{{Message: NoticePartnerLeft, Username: SystemUsername}}, connB.chats())
	assert.Equal(t, []int{1}, connB.counts())

	assert.ErrorIs(t, e.Connect(ctx, a), ErrSessionClosed)
	assert.ErrorIs(t, e.Relay(ctx, a, []byte(`{"message":"x"}`)), ErrSessionClosed)
}

func TestEngine_DisconnectBeforeConnect(t *testing.T) {
	ctx := context.Background()
	e := NewEngine()
	s := e.NewSession("p1", &fakeConn{})

	e.Disconnect(ctx, s)

	assert.Equal(t, StateDisconnected, s.State())
	assert.False(t, e.Snapshot("p1").HasCount)
	assert.ErrorIs(t, e.Connect(ctx, s), ErrSessionClosed)
}

func TestEngine_ConnectTwice(t *testing.T) {
	e := NewEngine()
	a, _ := connect(t, e, "p1")

	assert.ErrorIs(t, e.Connect(context.Background(), a), ErrAlreadyConnected)
	assert.Equal(t, 1, e.Snapshot("p1").Active)
}

func TestEngine_RelayToPartnerAndEcho(t *testing.T) {
	ctx := context.Background()
	e := NewEngine()
	a, connA := connect(t, e, "p1")
	b, connB := connect(t, e, "p1")
	connA.reset()
	connB.reset()

	require.NoError(t, e.Relay(ctx, a, []byte(`{"message":"hello","username":"spoof"}`)))
	require.NoError(t, e.Relay(ctx, b, []byte(`{"message":"hi back"}`)))

	want := []ChatMessage{
		{Message: "hello", Username: string(RoleInitiator)},
		{Message: "hi back", Username: string(RoleResponder)},
	}
	assert.Equal(t, want, connA.chats())
	assert.Equal(t, want, connB.chats())
}

func TestEngine_RelayWhileWaitingEchoes(t *testing.T) {
	e := NewEngine()
	a, connA := connect(t, e, "p1")
	connA.reset()

	require.NoError(t, e.Relay(context.Background(), a, []byte(`{"message":"hello"}`)))
	assert.Equal(t, []ChatMessage{{Message: "hello", Username: string(RoleInitiator)}}, connA.chats())
}

func TestEngine_RelayMalformed(t *testing.T) {
	e := NewEngine()
	a, connA := connect(t, e, "p1")
	_, connB := connect(t, e, "p1")
	connA.reset()
	connB.reset()

	err := e.Relay(context.Background(), a, []byte(`not json`))
	assert.ErrorIs(t, err, ErrMalformedInput)
	assert.Empty(t, connA.payloads)
	assert.Empty(t, connB.payloads)
	assert.Equal(t, StatePaired, a.State(), "session stays open")
}

func TestEngine_RelaySwallowsPartnerFailure(t *testing.T) {
	e := NewEngine()
	a, connA := connect(t, e, "p1")
	_, connB := connect(t, e, "p1")
	connA.reset()
	connB.setFailing(true)

	require.NoError(t, e.Relay(context.Background(), a, []byte(`{"message":"still here"}`)))
	assert.Equal(t, []ChatMessage{{Message: "still here", Username: string(RoleInitiator)}}, connA.chats())
}

func TestEngine_BroadcastSkipsUnreachableRecipients(t *testing.T) {
	e := NewEngine()
	_, connA := connect(t, e, "p1")
	_, connB := connect(t, e, "p1")
	connA.setFailing(true)
	connB.reset()

	_, connC := connect(t, e, "p1")

	assert.Equal(t, []int{3}, connB.counts())
	assert.Equal(t, 3, connC.lastCount())
}

func TestEngine_DisconnectWithUnreachablePartner(t *testing.T) {
	ctx := context.Background()
	e := NewEngine()
	a, connA := connect(t, e, "p1")
	b, _ := connect(t, e, "p1")
	connA.setFailing(true)

	e.Disconnect(ctx, b)

	assert.Nil(t, a.Partner())
	assert.Equal(t, 1, e.Snapshot("p1").Active)
}

// Interleaved disconnects can leave an already-paired session alone in the last
// stride window. A newcomer must wait rather than steal it.
func TestEngine_StaleLeftoverIsNotRelinked(t *testing.T) {
	ctx := context.Background()
	e := NewEngine()
	a, _ := connect(t, e, "p1")
	b, _ := connect(t, e, "p1")
	c, _ := connect(t, e, "p1")
	d, _ := connect(t, e, "p1")
	f, _ := connect(t, e, "p1")

	// Sequence is [A B C D F]; F waits. Drop A: [B C D F]. B survives unpaired,
	// C and D stay paired.
	e.Disconnect(ctx, a)
	require.Nil(t, b.Partner())
	require.Same(t, d, c.Partner())

	// Drop B: [C D F]. The lone window is F, who is waiting; a newcomer pairs with F.
	e.Disconnect(ctx, b)
	g, _ := connect(t, e, "p1")
	assert.Same(t, f, g.Partner())
	assert.Same(t, g, f.Partner())

	// Drop C: [D F G]. The lone window is G, already paired with F. A newcomer waits.
	e.Disconnect(ctx, c)
	h, connH := connect(t, e, "p1")
	assert.Nil(t, h.Partner())
	assert.Equal(t, StateWaiting, h.State())
	assert.Equal(t, RoleInitiator, h.Role())
	assert.Same(t, f, g.Partner(), "existing link untouched")
	assert.Equal(t, []ChatMessage{{Message: NoticeSearching, Username: SystemUsername}}, connH.chats())

	assertSymmetric(t, e, "p1")
}

func TestEngine_ConcurrentConnectsAndDisconnects(t *testing.T) {
	ctx := context.Background()
	e := NewEngine()

	const problems = 4
	const perProblem = 25

	var (
		mu       sync.Mutex
		sessions []*Session
		wg       sync.WaitGroup
	)
	for p := 0; p < problems; p++ {
		for i := 0; i < perProblem; i++ {
			wg.Add(1)
			go func(problemID string) {
				defer wg.Done()
				s := e.NewSession(problemID, &fakeConn{})
				if err := e.Connect(ctx, s); err != nil {
					t.Error(err)
					return
				}
				mu.Lock()
				sessions = append(sessions, s)
				mu.Unlock()
			}(fmt.Sprintf("p%d", p))
		}
	}
	wg.Wait()

	for p := 0; p < problems; p++ {
		assert.Equal(t, perProblem, e.Snapshot(fmt.Sprintf("p%d", p)).Active)
		assertSymmetric(t, e, fmt.Sprintf("p%d", p))
	}

	// Tear down every other session concurrently with a fresh wave of connects.
	for i, s := range sessions {
		if i%2 == 0 {
			continue
		}
		wg.Add(2)
		go func(s *Session) {
			defer wg.Done()
			e.Disconnect(ctx, s)
		}(s)
		go func(problemID string) {
			defer wg.Done()
			assert.NoError(t, e.Connect(ctx, e.NewSession(problemID, &fakeConn{})))
		}(s.ProblemID)
	}
	wg.Wait()

	for p := 0; p < problems; p++ {
		id := fmt.Sprintf("p%d", p)
		assert.Equal(t, len(e.Snapshot(id).SessionIDs), e.Snapshot(id).Active)
		assertSymmetric(t, e, id)
	}
}

func TestEngine_PublishesLifecycleEvents(t *testing.T) {
	ctx := context.Background()
	pub := &recordingPublisher{}
	e := NewEngine(WithPublisher(pub))

	a, _ := connect(t, e, "p1")
	connect(t, e, "p1")
	e.Disconnect(ctx, a)

	assert.Equal(t, []string{
		EventSessionConnected.Name(),
		EventSessionConnected.Name(),
		EventSessionsPaired.Name(),
		EventSessionDisconnected.Name(),
	}, pub.topics())
}

func TestEngine_PublishFailureDoesNotFailConnect(t *testing.T) {
	pub := &recordingPublisher{err: errors.New("bus down")}
	e := NewEngine(WithPublisher(pub))

	a, _ := connect(t, e, "p1")
	assert.Equal(t, StateWaiting, a.State())
}

func TestEngine_Reset(t *testing.T) {
	e := NewEngine()
	connect(t, e, "p1")
	connect(t, e, "p2")

	e.Reset()
	assert.Empty(t, e.ActiveCounts())
	assert.False(t, e.Snapshot("p1").HasQueue)
}

// assertSymmetric checks that every partner link in the problem points both ways
// and only at sessions still in the sequence.
func assertSymmetric(t *testing.T, e *Engine, problemID string) {
	t.Helper()
	e.mu.RLock()
	defer e.mu.RUnlock()

	members := make(map[*Session]bool)
	for _, s := range e.registry.queue(problemID) {
		members[s] = true
	}
	for s := range members {
		if s.partner == nil {
			assert.NotEqual(t, StatePaired, s.state, "unpaired session %s marked paired", s.ID)
			continue
		}
		assert.Same(t, s, s.partner.partner, "asymmetric link at %s", s.ID)
		assert.True(t, members[s.partner], "partner of %s has left", s.ID)
		assert.Equal(t, StatePaired, s.state)
	}
}
