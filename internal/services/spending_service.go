package services

import (
	"fmt"
	"log"
	"path/filepath"
	"strings"
	"time"

	"pocketlog/internal/metrics"
	"pocketlog/internal/models"
	"pocketlog/internal/repositories"
	"pocketlog/pkg/blobstore"
	"pocketlog/pkg/rabbitmq"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

const (
	maxFeedPageSize = 200

	// spendingMediaPrefix is the blob key prefix of every ledger upload.
	spendingMediaPrefix = "spending/"
)

// Media is one uploaded file attached to a ledger entry.
type Media struct {
	Filename string
	Data     []byte
}

// CreateSpendingInput carries the fields of a new ledger entry.
type CreateSpendingInput struct {
	Date        time.Time
	Amount      decimal.Decimal
	Description string
	Note        string
	Media       []Media
}

// UpdateSpendingInput is a partial update; nil fields are left unchanged.
type UpdateSpendingInput struct {
	Amount      *decimal.Decimal
	Description *string
	Note        *string
	Images      *[]string
}

// FeedPage is one page of the followed-users feed.
type FeedPage struct {
	Items []models.SpendingSummary `json:"items"`
	Page  int                      `json:"page"`
	Size  int                      `json:"size"`
	Total int64                    `json:"total"`
}

// SpendingService handles business logic related to the ledger.
type SpendingService struct {
	spendingRepo repositories.SpendingRepository
	followRepo   repositories.FollowRepository
	store        blobstore.Store
	publisher    EventPublisher
	pageSize     int
}

// NewSpendingService creates a new SpendingService. publisher may be nil.
func NewSpendingService(spendingRepo repositories.SpendingRepository, followRepo repositories.FollowRepository, store blobstore.Store, publisher EventPublisher, pageSize int) *SpendingService {
	if pageSize <= 0 {
		pageSize = 50
	}
	if pageSize > maxFeedPageSize {
		pageSize = maxFeedPageSize
	}
	return &SpendingService{
		spendingRepo: spendingRepo,
		followRepo:   followRepo,
		store:        store,
		publisher:    publisher,
		pageSize:     pageSize,
	}
}

// Create stores a new entry together with its media.
func (s *SpendingService) Create(kakaoID int64, in CreateSpendingInput) (*models.Spending, error) {
	if in.Amount.IsNegative() {
		return nil, fmt.Errorf("%w: amount must not be negative", ErrValidation)
	}
	if strings.TrimSpace(in.Description) == "" {
		return nil, fmt.Errorf("%w: description must not be blank", ErrValidation)
	}
	if in.Date.IsZero() {
		return nil, fmt.Errorf("%w: date is required", ErrValidation)
	}

	images := make([]string, 0, len(in.Media))
	for _, m := range in.Media {
		if len(m.Data) == 0 {
			continue
		}
		url, err := s.storeMedia(m)
		if err != nil {
			s.removeBlobs(images)
			return nil, err
		}
		images = append(images, url)
	}

	spending := &models.Spending{
		KakaoID:     kakaoID,
		Amount:      in.Amount,
		Description: strings.TrimSpace(in.Description),
		Note:        in.Note,
		Images:      datatypes.JSONSlice[string](images),
		Date:        models.Day(in.Date),
	}
	if err := s.spendingRepo.Create(spending); err != nil {
		s.removeBlobs(images)
		return nil, err
	}

	metrics.SpendingCreated.Inc()
	publishEvent(s.publisher, rabbitmq.RoutingKeySpendingCreated, SpendingCreatedEvent{
		SpendingID: spending.ID,
		KakaoID:    spending.KakaoID,
		Amount:     spending.Amount,
		Date:       spending.Date.Format(models.DateLayout),
	})
	return spending, nil
}

func (s *SpendingService) storeMedia(m Media) (string, error) {
	if s.store == nil {
		return "", fmt.Errorf("media storage is not configured")
	}
	name := filepath.Base(m.Filename)
	key := fmt.Sprintf("%s%s-%s", spendingMediaPrefix, uuid.New().String(), name)
	url, err := s.store.Put(key, m.Data, blobstore.ContentTypeFor(name))
	if err != nil {
		return "", fmt.Errorf("failed to store media %s: %w", name, err)
	}
	return url, nil
}

// GetByID returns an entry owned by kakaoID. Entries of other users are reported as not found.
func (s *SpendingService) GetByID(kakaoID int64, id uint) (*models.Spending, error) {
	spending, err := s.spendingRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if spending.KakaoID != kakaoID {
		return nil, fmt.Errorf("spending %d: %w", id, ErrNotFound)
	}
	return spending, nil
}

// Update applies the non-nil fields of in to an entry owned by kakaoID.
func (s *SpendingService) Update(kakaoID int64, id uint, in UpdateSpendingInput) (*models.Spending, error) {
	spending, err := s.GetByID(kakaoID, id)
	if err != nil {
		return nil, err
	}

	if in.Amount != nil {
		if in.Amount.IsNegative() {
			return nil, fmt.Errorf("%w: amount must not be negative", ErrValidation)
		}
		spending.Amount = *in.Amount
	}
	if in.Description != nil {
		if strings.TrimSpace(*in.Description) == "" {
			return nil, fmt.Errorf("%w: description must not be blank", ErrValidation)
		}
		spending.Description = strings.TrimSpace(*in.Description)
	}
	if in.Note != nil {
		spending.Note = *in.Note
	}
	var dropped []string
	if in.Images != nil {
		if added := missingFrom(*in.Images, spending.Images); len(added) > 0 {
			return nil, fmt.Errorf("%w: image %s is not attached to spending %d", ErrValidation, added[0], id)
		}
		dropped = missingFrom(spending.Images, *in.Images)
		spending.Images = datatypes.JSONSlice[string](append([]string{}, *in.Images...))
	}

	if err := s.spendingRepo.Update(spending); err != nil {
		return nil, err
	}
	s.removeBlobs(dropped)
	return spending, nil
}

// Delete removes an entry owned by kakaoID and its stored media.
func (s *SpendingService) Delete(kakaoID int64, id uint) error {
	spending, err := s.GetByID(kakaoID, id)
	if err != nil {
		return err
	}
	if err := s.spendingRepo.Delete(id, kakaoID); err != nil {
		return err
	}
	s.removeBlobs(spending.Images)
	return nil
}

func (s *SpendingService) ListByDate(kakaoID int64, date time.Time) ([]models.Spending, error) {
	return s.spendingRepo.ListByDate(kakaoID, date)
}

// ListByDateRange lists entries between start and end, both inclusive.
func (s *SpendingService) ListByDateRange(kakaoID int64, start, end time.Time) ([]models.Spending, error) {
	if err := checkRange(start, end); err != nil {
		return nil, err
	}
	return s.spendingRepo.ListByDateRange(kakaoID, start, end)
}

// SumAmountInRange adds the amounts in the inclusive range. No entries sum to zero.
func (s *SpendingService) SumAmountInRange(kakaoID int64, start, end time.Time) (decimal.Decimal, error) {
	if err := checkRange(start, end); err != nil {
		return decimal.Zero, err
	}
	amounts, err := s.spendingRepo.AmountsInRange(kakaoID, start, end)
	if err != nil {
		return decimal.Zero, err
	}
	return decimal.Sum(decimal.Zero, amounts...), nil
}

// SumForDate is the total of a single day.
func (s *SpendingService) SumForDate(kakaoID int64, date time.Time) (decimal.Decimal, error) {
	return s.SumAmountInRange(kakaoID, date, date)
}

// AddOrUpdateReaction sets reactorID's reaction on any entry.
func (s *SpendingService) AddOrUpdateReaction(id uint, reactorID int64, reactionType models.ReactionType) (*models.Spending, error) {
	if !reactionType.Valid() {
		return nil, fmt.Errorf("%w: unknown reaction type %q", ErrValidation, reactionType)
	}
	return s.spendingRepo.SetReaction(id, reactorID, reactionType)
}

// SummarizeForFollowedUsers pages through the entries of everyone kakaoID follows.
// page is zero based; a non-positive size uses the configured default.
func (s *SpendingService) SummarizeForFollowedUsers(kakaoID int64, page, size int) (*FeedPage, error) {
	if page < 0 {
		page = 0
	}
	if size <= 0 {
		size = s.pageSize
	}
	if size > maxFeedPageSize {
		size = maxFeedPageSize
	}

	followees, err := s.followRepo.FolloweeIDs(kakaoID)
	if err != nil {
		return nil, err
	}
	entries, total, err := s.spendingRepo.ListByOwners(followees, page*size, size)
	if err != nil {
		return nil, err
	}

	items := make([]models.SpendingSummary, 0, len(entries))
	for i := range entries {
		items = append(items, entries[i].Summary())
	}
	return &FeedPage{Items: items, Page: page, Size: size, Total: total}, nil
}

// removeBlobs deletes stored ledger media. URLs outside the spending prefix are never touched.
func (s *SpendingService) removeBlobs(urls []string) {
	if s.store == nil {
		return
	}
	for _, url := range urls {
		key, ok := s.store.KeyFromURL(url)
		if !ok || !strings.HasPrefix(key, spendingMediaPrefix) {
			continue
		}
		if err := s.store.Delete(key); err != nil {
			log.Printf("Failed to delete blob %s: %v", key, err)
		}
	}
}

func checkRange(start, end time.Time) error {
	if start.IsZero() || end.IsZero() {
		return fmt.Errorf("%w: start and end dates are required", ErrValidation)
	}
	if models.Day(end).Before(models.Day(start)) {
		return fmt.Errorf("%w: end date %s is before start date %s", ErrValidation, end.Format(models.DateLayout), start.Format(models.DateLayout))
	}
	return nil
}

// missingFrom returns the entries of before that are not in after.
func missingFrom(before, after []string) []string {
	keep := make(map[string]struct{}, len(after))
	for _, u := range after {
		keep[u] = struct{}{}
	}
	var out []string
	for _, u := range before {
		if _, ok := keep[u]; !ok {
			out = append(out, u)
		}
	}
	return out
}
