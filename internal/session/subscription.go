package session

const eventBufferSize = 16

// Subscription provides event channels for a subscriber. Sends never block;
// events are dropped when a subscriber falls behind.
type Subscription struct {
	TrackChanged    <-chan TrackChange
	StateChanged    <-chan StateChange
	PositionChanged <-chan PositionChange
	QueueChanged    <-chan QueueChange
	PreviewLimited  <-chan PreviewLimited
	PaymentRequired <-chan PaymentRequired
	TrackUpdated    <-chan TrackUpdated
	FavoritesLoaded <-chan FavoritesLoaded
	Notices         <-chan Notice
	Errors          <-chan ErrorEvent
	Done            <-chan struct{}

	// Internal write channels
	trackCh     chan TrackChange
	stateCh     chan StateChange
	positionCh  chan PositionChange
	queueCh     chan QueueChange
	previewCh   chan PreviewLimited
	paymentCh   chan PaymentRequired
	updatedCh   chan TrackUpdated
	favoritesCh chan FavoritesLoaded
	noticeCh    chan Notice
	errorCh     chan ErrorEvent
	doneCh      chan struct{}
}

func newSubscription() *Subscription {
	s := &Subscription{
		trackCh:     make(chan TrackChange, eventBufferSize),
		stateCh:     make(chan StateChange, eventBufferSize),
		positionCh:  make(chan PositionChange, eventBufferSize),
		queueCh:     make(chan QueueChange, eventBufferSize),
		previewCh:   make(chan PreviewLimited, eventBufferSize),
		paymentCh:   make(chan PaymentRequired, eventBufferSize),
		updatedCh:   make(chan TrackUpdated, eventBufferSize),
		favoritesCh: make(chan FavoritesLoaded, eventBufferSize),
		noticeCh:    make(chan Notice, eventBufferSize),
		errorCh:     make(chan ErrorEvent, eventBufferSize),
		doneCh:      make(chan struct{}),
	}
	s.TrackChanged = s.trackCh
	s.StateChanged = s.stateCh
	s.PositionChanged = s.positionCh
	s.QueueChanged = s.queueCh
	s.PreviewLimited = s.previewCh
	s.PaymentRequired = s.paymentCh
	s.TrackUpdated = s.updatedCh
	s.FavoritesLoaded = s.favoritesCh
	s.Notices = s.noticeCh
	s.Errors = s.errorCh
	s.Done = s.doneCh
	return s
}

// close signals subscribers to stop by closing doneCh.
func (s *Subscription) close() {
	close(s.doneCh)
}

func (s *Subscription) sendTrack(e TrackChange) {
	select {
	case s.trackCh <- e:
	default:
		// Drop if buffer full
	}
}

func (s *Subscription) sendState(e StateChange) {
	select {
	case s.stateCh <- e:
	default:
	}
}

func (s *Subscription) sendPosition(e PositionChange) {
	select {
	case s.positionCh <- e:
	default:
	}
}

func (s *Subscription) sendQueue(e QueueChange) {
	select {
	case s.queueCh <- e:
	default:
	}
}

func (s *Subscription) sendPreview(e PreviewLimited) {
	select {
	case s.previewCh <- e:
	default:
	}
}

func (s *Subscription) sendPayment(e PaymentRequired) {
	select {
	case s.paymentCh <- e:
	default:
	}
}

func (s *Subscription) sendTrackUpdated(e TrackUpdated) {
	select {
	case s.updatedCh <- e:
	default:
	}
}

func (s *Subscription) sendFavoritesLoaded(e FavoritesLoaded) {
	select {
	case s.favoritesCh <- e:
	default:
	}
}

func (s *Subscription) sendNotice(e Notice) {
	select {
	case s.noticeCh <- e:
	default:
	}
}

func (s *Subscription) sendError(e ErrorEvent) {
	select {
	case s.errorCh <- e:
	default:
	}
}
