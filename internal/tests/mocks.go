package tests

import (
	"context"
	"errors"
	"math"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"rideshare/internal/domain"
	"rideshare/internal/repository"
)

// ──────────────────────────────────────────────
// MOCK RIDE REPOSITORY
// ──────────────────────────────────────────────

// MockRideRepository is a mock implementation of RideRepository.
type MockRideRepository struct {
	mu    sync.RWMutex
	rides map[string]*domain.Ride

	// Counters for verification
	CreateCallCount int32
	UpdateCallCount int32

	// Error injection
	CreateError error
	UpdateError error
}

// NewMockRideRepository creates a new mock ride repository.
func NewMockRideRepository() *MockRideRepository {
	return &MockRideRepository{
		rides: make(map[string]*domain.Ride),
	}
}

// AddRide adds a ride to the mock repository.
func (m *MockRideRepository) AddRide(ride *domain.Ride) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rides[ride.ID] = ride
}

func (m *MockRideRepository) Create(ctx context.Context, ride *domain.Ride) error {
	atomic.AddInt32(&m.CreateCallCount, 1)
	if m.CreateError != nil {
		return m.CreateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rides[ride.ID] = ride
	return nil
}

func (m *MockRideRepository) CreateBatch(ctx context.Context, rides []*domain.Ride) error {
	for _, ride := range rides {
		if err := m.Create(ctx, ride); err != nil {
			return err
		}
	}
	return nil
}

func (m *MockRideRepository) GetByID(ctx context.Context, id string) (*domain.Ride, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ride, ok := m.rides[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	// Return a copy to avoid mutation issues.
	copy := *ride
	return &copy, nil
}

func (m *MockRideRepository) GetByGroupID(ctx context.Context, groupID string) ([]*domain.Ride, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []*domain.Ride
	for _, r := range m.rides {
		if r.RoundTripGroupID == groupID {
			copy := *r
			result = append(result, &copy)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].DepartureAt.Before(result[j].DepartureAt)
	})
	return result, nil
}

func (m *MockRideRepository) ListByPoster(ctx context.Context, posterID string) ([]*domain.Ride, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []*domain.Ride
	for _, r := range m.rides {
		if r.PosterID == posterID {
			copy := *r
			result = append(result, &copy)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result, nil
}

func (m *MockRideRepository) Search(ctx context.Context, filter repository.RideFilter) ([]*domain.Ride, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []*domain.Ride
	for _, r := range m.rides {
		if r.Status != domain.RideStatusActive {
			continue
		}
		if filter.Role != "" && r.Role != filter.Role {
			continue
		}
		if !filter.FromDate.IsZero() && r.DepartureAt.Before(filter.FromDate) {
			continue
		}
		if !filter.ToDate.IsZero() && r.DepartureAt.After(filter.ToDate) {
			continue
		}
		if filter.RadiusKm > 0 && !withinRadius(r, filter) {
			continue
		}
		copy := *r
		result = append(result, &copy)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	if filter.Limit > 0 && len(result) > filter.Limit {
		result = result[:filter.Limit]
	}
	return result, nil
}

// withinRadius applies the same bounding box the Postgres search uses.
func withinRadius(r *domain.Ride, filter repository.RideFilter) bool {
	latDelta := filter.RadiusKm / 111.0
	lngDelta := latDelta
	if cos := math.Cos(filter.NearLat * math.Pi / 180); cos > 0.01 {
		lngDelta = filter.RadiusKm / (111.0 * cos)
	}
	return r.OriginLat >= filter.NearLat-latDelta && r.OriginLat <= filter.NearLat+latDelta &&
		r.OriginLng >= filter.NearLng-lngDelta && r.OriginLng <= filter.NearLng+lngDelta
}

func (m *MockRideRepository) Update(ctx context.Context, ride *domain.Ride) error {
	atomic.AddInt32(&m.UpdateCallCount, 1)
	if m.UpdateError != nil {
		return m.UpdateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.rides[ride.ID]; !ok {
		return repository.ErrNotFound
	}
	copy := *ride
	m.rides[ride.ID] = &copy
	return nil
}

func (m *MockRideRepository) UpdateBatch(ctx context.Context, rides []*domain.Ride) error {
	for _, ride := range rides {
		if err := m.Update(ctx, ride); err != nil {
			return err
		}
	}
	return nil
}

// GetRide returns the ride by ID (for test assertions).
func (m *MockRideRepository) GetRide(id string) *domain.Ride {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.rides[id]
}

// CountRides returns the number of rides.
func (m *MockRideRepository) CountRides() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.rides)
}

// ──────────────────────────────────────────────
// MOCK BOOKING REPOSITORY
// ──────────────────────────────────────────────

// MockBookingRepository is a mock implementation of BookingRepository.
type MockBookingRepository struct {
	mu       sync.RWMutex
	bookings map[string]*domain.Booking

	// Counters
	CreateCallCount int32
	UpdateCallCount int32

	// Error injection
	CreateError error
	UpdateError error
}

// NewMockBookingRepository creates a new mock booking repository.
func NewMockBookingRepository() *MockBookingRepository {
	return &MockBookingRepository{
		bookings: make(map[string]*domain.Booking),
	}
}

// AddBooking adds a booking to the mock repository.
func (m *MockBookingRepository) AddBooking(booking *domain.Booking) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.bookings[booking.ID] = booking
}

func (m *MockBookingRepository) Create(ctx context.Context, booking *domain.Booking) error {
	atomic.AddInt32(&m.CreateCallCount, 1)
	if m.CreateError != nil {
		return m.CreateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.bookings[booking.ID] = booking
	return nil
}

func (m *MockBookingRepository) GetByID(ctx context.Context, id string) (*domain.Booking, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	booking, ok := m.bookings[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copy := *booking
	return &copy, nil
}

func (m *MockBookingRepository) ListByRide(ctx context.Context, rideID string) ([]*domain.Booking, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []*domain.Booking
	for _, b := range m.bookings {
		if b.RideID == rideID {
			copy := *b
			result = append(result, &copy)
		}
	}
	return result, nil
}

func (m *MockBookingRepository) ListByRides(ctx context.Context, rideIDs []string) ([]*domain.Booking, error) {
	wanted := make(map[string]bool, len(rideIDs))
	for _, id := range rideIDs {
		wanted[id] = true
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []*domain.Booking
	for _, b := range m.bookings {
		if wanted[b.RideID] {
			copy := *b
			result = append(result, &copy)
		}
	}
	return result, nil
}

func (m *MockBookingRepository) ListByPassenger(ctx context.Context, passengerID string) ([]*domain.Booking, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []*domain.Booking
	for _, b := range m.bookings {
		if b.PassengerID == passengerID {
			copy := *b
			result = append(result, &copy)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result, nil
}

func (m *MockBookingRepository) ConfirmedSeats(ctx context.Context, rideID string) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	total := 0
	for _, b := range m.bookings {
		if b.RideID == rideID && b.Status == domain.BookingStatusConfirmed {
			total += b.Seats
		}
	}
	return total, nil
}

func (m *MockBookingRepository) Update(ctx context.Context, booking *domain.Booking) error {
	atomic.AddInt32(&m.UpdateCallCount, 1)
	if m.UpdateError != nil {
		return m.UpdateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.bookings[booking.ID]; !ok {
		return repository.ErrNotFound
	}
	copy := *booking
	m.bookings[booking.ID] = &copy
	return nil
}

// GetBooking returns the booking by ID (for test assertions).
func (m *MockBookingRepository) GetBooking(id string) *domain.Booking {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.bookings[id]
}

// CountBookings returns the number of bookings.
func (m *MockBookingRepository) CountBookings() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.bookings)
}

// ──────────────────────────────────────────────
// MOCK PROFILE REPOSITORY
// ──────────────────────────────────────────────

// MockProfileRepository is a mock implementation of ProfileRepository.
type MockProfileRepository struct {
	mu       sync.RWMutex
	profiles map[string]*domain.Profile

	// Counters
	CreateCallCount int32
	UpdateCallCount int32

	// Error injection
	CreateError error
	UpdateError error
}

// NewMockProfileRepository creates a new mock profile repository.
func NewMockProfileRepository() *MockProfileRepository {
	return &MockProfileRepository{
		profiles: make(map[string]*domain.Profile),
	}
}

// AddProfile adds a profile to the mock repository.
func (m *MockProfileRepository) AddProfile(profile *domain.Profile) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.profiles[profile.ID] = profile
}

func (m *MockProfileRepository) Create(ctx context.Context, profile *domain.Profile) error {
	atomic.AddInt32(&m.CreateCallCount, 1)
	if m.CreateError != nil {
		return m.CreateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.profiles {
		if strings.EqualFold(p.Email, profile.Email) {
			return repository.ErrDuplicate
		}
	}
	m.profiles[profile.ID] = profile
	return nil
}

func (m *MockProfileRepository) GetByID(ctx context.Context, id string) (*domain.Profile, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	profile, ok := m.profiles[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copy := *profile
	return &copy, nil
}

func (m *MockProfileRepository) GetByEmail(ctx context.Context, email string) (*domain.Profile, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, p := range m.profiles {
		if strings.EqualFold(p.Email, email) {
			copy := *p
			return &copy, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *MockProfileRepository) Update(ctx context.Context, profile *domain.Profile) error {
	atomic.AddInt32(&m.UpdateCallCount, 1)
	if m.UpdateError != nil {
		return m.UpdateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.profiles[profile.ID]; !ok {
		return repository.ErrNotFound
	}
	copy := *profile
	m.profiles[profile.ID] = &copy
	return nil
}

// GetProfile returns the profile by ID (for test assertions).
func (m *MockProfileRepository) GetProfile(id string) *domain.Profile {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.profiles[id]
}

// ──────────────────────────────────────────────
// MOCK VEHICLE REPOSITORY
// ──────────────────────────────────────────────

// MockVehicleRepository is a mock implementation of VehicleRepository.
type MockVehicleRepository struct {
	mu       sync.RWMutex
	vehicles map[string]*domain.Vehicle

	// Error injection
	CreateError error
}

// NewMockVehicleRepository creates a new mock vehicle repository.
func NewMockVehicleRepository() *MockVehicleRepository {
	return &MockVehicleRepository{
		vehicles: make(map[string]*domain.Vehicle),
	}
}

// AddVehicle adds a vehicle to the mock repository.
func (m *MockVehicleRepository) AddVehicle(vehicle *domain.Vehicle) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.vehicles[vehicle.ID] = vehicle
}

func (m *MockVehicleRepository) Create(ctx context.Context, vehicle *domain.Vehicle) error {
	if m.CreateError != nil {
		return m.CreateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.vehicles[vehicle.ID] = vehicle
	return nil
}

func (m *MockVehicleRepository) GetByID(ctx context.Context, id string) (*domain.Vehicle, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	vehicle, ok := m.vehicles[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copy := *vehicle
	return &copy, nil
}

func (m *MockVehicleRepository) ListByOwner(ctx context.Context, ownerID string) ([]*domain.Vehicle, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []*domain.Vehicle
	for _, v := range m.vehicles {
		if v.OwnerID == ownerID {
			copy := *v
			result = append(result, &copy)
		}
	}
	return result, nil
}

func (m *MockVehicleRepository) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.vehicles[id]; !ok {
		return repository.ErrNotFound
	}
	delete(m.vehicles, id)
	return nil
}

// ──────────────────────────────────────────────
// MOCK BLOCK REPOSITORY
// ──────────────────────────────────────────────

// MockBlockRepository is a mock implementation of BlockRepository.
type MockBlockRepository struct {
	mu     sync.RWMutex
	blocks map[string]*domain.UserBlock // key: blocker|blocked

	// Error injection
	CreateError error
}

// NewMockBlockRepository creates a new mock block repository.
func NewMockBlockRepository() *MockBlockRepository {
	return &MockBlockRepository{
		blocks: make(map[string]*domain.UserBlock),
	}
}

// AddBlock adds a block to the mock repository.
func (m *MockBlockRepository) AddBlock(blockerID, blockedID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.blocks[blockerID+"|"+blockedID] = &domain.UserBlock{
		BlockerID: blockerID,
		BlockedID: blockedID,
		CreatedAt: time.Now(),
	}
}

func (m *MockBlockRepository) Create(ctx context.Context, block *domain.UserBlock) error {
	if m.CreateError != nil {
		return m.CreateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	key := block.BlockerID + "|" + block.BlockedID
	if _, ok := m.blocks[key]; ok {
		return repository.ErrDuplicate
	}
	m.blocks[key] = block
	return nil
}

func (m *MockBlockRepository) Delete(ctx context.Context, blockerID, blockedID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.blocks, blockerID+"|"+blockedID)
	return nil
}

func (m *MockBlockRepository) ListByBlocker(ctx context.Context, blockerID string) ([]*domain.UserBlock, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []*domain.UserBlock
	for _, b := range m.blocks {
		if b.BlockerID == blockerID {
			copy := *b
			result = append(result, &copy)
		}
	}
	return result, nil
}

func (m *MockBlockRepository) IsBlockedPair(ctx context.Context, userA, userB string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if _, ok := m.blocks[userA+"|"+userB]; ok {
		return true, nil
	}
	if _, ok := m.blocks[userB+"|"+userA]; ok {
		return true, nil
	}
	return false, nil
}

func (m *MockBlockRepository) BlockedIDs(ctx context.Context, userID string) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	seen := make(map[string]bool)
	var result []string
	for _, b := range m.blocks {
		var other string
		switch userID {
		case b.BlockerID:
			other = b.BlockedID
		case b.BlockedID:
			other = b.BlockerID
		default:
			continue
		}
		if !seen[other] {
			seen[other] = true
			result = append(result, other)
		}
	}
	return result, nil
}

// ──────────────────────────────────────────────
// MOCK CONVERSATION REPOSITORY
// ──────────────────────────────────────────────

// MockConversationRepository is a mock implementation of ConversationRepository.
type MockConversationRepository struct {
	mu            sync.RWMutex
	conversations map[string]*domain.Conversation
	messages      map[string][]*domain.Message // by conversation ID

	// Error injection
	CreateError        error
	CreateMessageError error
}

// NewMockConversationRepository creates a new mock conversation repository.
func NewMockConversationRepository() *MockConversationRepository {
	return &MockConversationRepository{
		conversations: make(map[string]*domain.Conversation),
		messages:      make(map[string][]*domain.Message),
	}
}

// AddConversation adds a conversation to the mock repository.
func (m *MockConversationRepository) AddConversation(conv *domain.Conversation) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.conversations[conv.ID] = conv
}

func (m *MockConversationRepository) Create(ctx context.Context, conv *domain.Conversation) error {
	if m.CreateError != nil {
		return m.CreateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.conversations {
		if existing.RideID == conv.RideID && samePair(existing, conv) {
			return repository.ErrDuplicate
		}
	}
	m.conversations[conv.ID] = conv
	return nil
}

func samePair(a, b *domain.Conversation) bool {
	return (a.UserA == b.UserA && a.UserB == b.UserB) ||
		(a.UserA == b.UserB && a.UserB == b.UserA)
}

func (m *MockConversationRepository) GetByID(ctx context.Context, id string) (*domain.Conversation, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	conv, ok := m.conversations[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copy := *conv
	return &copy, nil
}

func (m *MockConversationRepository) GetByRideAndPair(ctx context.Context, rideID, userA, userB string) (*domain.Conversation, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	probe := &domain.Conversation{UserA: userA, UserB: userB}
	for _, conv := range m.conversations {
		if conv.RideID == rideID && samePair(conv, probe) {
			copy := *conv
			return &copy, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *MockConversationRepository) ListByUser(ctx context.Context, userID string) ([]*domain.Conversation, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []*domain.Conversation
	for _, conv := range m.conversations {
		if conv.HasParticipant(userID) {
			copy := *conv
			result = append(result, &copy)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].LastMessageAt.After(result[j].LastMessageAt)
	})
	return result, nil
}

func (m *MockConversationRepository) CreateMessage(ctx context.Context, msg *domain.Message) error {
	if m.CreateMessageError != nil {
		return m.CreateMessageError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	conv, ok := m.conversations[msg.ConversationID]
	if !ok {
		return repository.ErrNotFound
	}
	m.messages[msg.ConversationID] = append(m.messages[msg.ConversationID], msg)
	conv.LastMessageAt = msg.SentAt
	return nil
}

func (m *MockConversationRepository) ListMessages(ctx context.Context, conversationID string) ([]*domain.Message, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	msgs := m.messages[conversationID]
	result := make([]*domain.Message, 0, len(msgs))
	for _, msg := range msgs {
		copy := *msg
		result = append(result, &copy)
	}
	return result, nil
}

func (m *MockConversationRepository) MarkRead(ctx context.Context, conversationID, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now()
	for _, msg := range m.messages[conversationID] {
		if msg.SenderID != userID && msg.ReadAt.IsZero() {
			msg.ReadAt = now
		}
	}
	return nil
}

func (m *MockConversationRepository) UnreadCount(ctx context.Context, conversationID, userID string) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	count := 0
	for _, msg := range m.messages[conversationID] {
		if msg.SenderID != userID && msg.ReadAt.IsZero() {
			count++
		}
	}
	return count, nil
}

// CountMessages returns the number of messages in a conversation.
func (m *MockConversationRepository) CountMessages(conversationID string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.messages[conversationID])
}

// ──────────────────────────────────────────────
// MOCK REPORT REPOSITORY
// ──────────────────────────────────────────────

// MockReportRepository is a mock implementation of ReportRepository.
type MockReportRepository struct {
	mu      sync.RWMutex
	reports map[string]*domain.Report

	// Error injection
	CreateError error
}

// NewMockReportRepository creates a new mock report repository.
func NewMockReportRepository() *MockReportRepository {
	return &MockReportRepository{
		reports: make(map[string]*domain.Report),
	}
}

// AddReport adds a report to the mock repository.
func (m *MockReportRepository) AddReport(report *domain.Report) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reports[report.ID] = report
}

func (m *MockReportRepository) Create(ctx context.Context, report *domain.Report) error {
	if m.CreateError != nil {
		return m.CreateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reports[report.ID] = report
	return nil
}

func (m *MockReportRepository) GetByID(ctx context.Context, id string) (*domain.Report, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	report, ok := m.reports[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copy := *report
	return &copy, nil
}

func (m *MockReportRepository) ListOpen(ctx context.Context) ([]*domain.Report, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []*domain.Report
	for _, r := range m.reports {
		if r.Status == domain.ReportStatusOpen {
			copy := *r
			result = append(result, &copy)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})
	return result, nil
}

func (m *MockReportRepository) Update(ctx context.Context, report *domain.Report) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.reports[report.ID]; !ok {
		return repository.ErrNotFound
	}
	copy := *report
	m.reports[report.ID] = &copy
	return nil
}

// GetReport returns the report by ID (for test assertions).
func (m *MockReportRepository) GetReport(id string) *domain.Report {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.reports[id]
}

// ──────────────────────────────────────────────
// MOCK EMAIL REPOSITORY
// ──────────────────────────────────────────────

// MockEmailRepository is a mock implementation of EmailRepository.
type MockEmailRepository struct {
	mu     sync.RWMutex
	events map[string]*domain.EmailEvent

	// Counters
	EnqueueCallCount int32

	// Error injection
	EnqueueError error
	UpdateError  error
}

// NewMockEmailRepository creates a new mock email repository.
func NewMockEmailRepository() *MockEmailRepository {
	return &MockEmailRepository{
		events: make(map[string]*domain.EmailEvent),
	}
}

func (m *MockEmailRepository) Enqueue(ctx context.Context, event *domain.EmailEvent) error {
	atomic.AddInt32(&m.EnqueueCallCount, 1)
	if m.EnqueueError != nil {
		return m.EnqueueError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events[event.ID] = event
	return nil
}

func (m *MockEmailRepository) Due(ctx context.Context, now time.Time, limit int) ([]*domain.EmailEvent, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []*domain.EmailEvent
	for _, e := range m.events {
		if e.Status != domain.EmailStatusQueued {
			continue
		}
		if !e.NextAttemptAt.IsZero() && e.NextAttemptAt.After(now) {
			continue
		}
		copy := *e
		result = append(result, &copy)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})
	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

func (m *MockEmailRepository) Update(ctx context.Context, event *domain.EmailEvent) error {
	if m.UpdateError != nil {
		return m.UpdateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.events[event.ID]; !ok {
		return repository.ErrNotFound
	}
	copy := *event
	m.events[event.ID] = &copy
	return nil
}

// EventsByKind returns queued events of a kind (for test assertions).
func (m *MockEmailRepository) EventsByKind(kind domain.EmailKind) []*domain.EmailEvent {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []*domain.EmailEvent
	for _, e := range m.events {
		if e.Kind == kind {
			result = append(result, e)
		}
	}
	return result
}

// GetEvent returns the event by ID (for test assertions).
func (m *MockEmailRepository) GetEvent(id string) *domain.EmailEvent {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.events[id]
}

// CountEvents returns the number of queued events.
func (m *MockEmailRepository) CountEvents() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.events)
}

// ──────────────────────────────────────────────
// MOCK LOCK STORE
// ──────────────────────────────────────────────

// MockLockStore is a mock implementation of LockStore.
type MockLockStore struct {
	mu    sync.Mutex
	locks map[string]time.Time

	// Counters
	AcquireCallCount int32
	ReleaseCallCount int32

	// Error injection
	AcquireError error

	// Force lock failure
	ForceAcquireFailure bool
}

// NewMockLockStore creates a new mock lock store.
func NewMockLockStore() *MockLockStore {
	return &MockLockStore{
		locks: make(map[string]time.Time),
	}
}

func (m *MockLockStore) AcquireRideLock(ctx context.Context, rideID string, ttl time.Duration) (bool, error) {
	atomic.AddInt32(&m.AcquireCallCount, 1)
	if m.AcquireError != nil {
		return false, m.AcquireError
	}
	if m.ForceAcquireFailure {
		return false, nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	key := "lock:ride:" + rideID
	if expiry, exists := m.locks[key]; exists {
		if time.Now().Before(expiry) {
			return false, nil // Lock still held.
		}
	}

	m.locks[key] = time.Now().Add(ttl)
	return true, nil
}

func (m *MockLockStore) ReleaseRideLock(ctx context.Context, rideID string) error {
	atomic.AddInt32(&m.ReleaseCallCount, 1)
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.locks, "lock:ride:"+rideID)
	return nil
}

// IsLocked checks if a ride is locked (for test assertions).
func (m *MockLockStore) IsLocked(rideID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	expiry, exists := m.locks["lock:ride:"+rideID]
	return exists && time.Now().Before(expiry)
}

// ──────────────────────────────────────────────
// MOCK EMAIL SENDER
// ──────────────────────────────────────────────

// MockSender records sent emails and can be told to fail.
type MockSender struct {
	mu   sync.Mutex
	sent []SentEmail

	// Error injection
	SendError error

	// Counters
	SendCallCount int32
}

// SentEmail is a delivery recorded by MockSender.
type SentEmail struct {
	To      string
	Subject string
	Body    string
}

// NewMockSender creates a new mock sender.
func NewMockSender() *MockSender {
	return &MockSender{}
}

func (m *MockSender) Send(ctx context.Context, to, subject, body string) error {
	atomic.AddInt32(&m.SendCallCount, 1)
	if m.SendError != nil {
		return m.SendError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, SentEmail{To: to, Subject: subject, Body: body})
	return nil
}

// Sent returns all recorded deliveries.
func (m *MockSender) Sent() []SentEmail {
	m.mu.Lock()
	defer m.mu.Unlock()
	result := make([]SentEmail, len(m.sent))
	copy(result, m.sent)
	return result
}

// ──────────────────────────────────────────────
// HELPER ERRORS
// ──────────────────────────────────────────────

var (
	ErrMockDBConstraint = errors.New("mock: unique constraint violation")
	ErrMockTimeout      = errors.New("mock: operation timeout")
)
