package storage

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/olivierg1729/jobfinder/internal/models"
)

const (
	searchCollection = "saved_searches"
	seenCollection   = "seen_offers"
)

// FirestoreStore keeps saved searches and the seen set in Firestore.
// Document IDs are content-derived hashes, so creation is naturally
// idempotent across concurrent instances.
type FirestoreStore struct {
	client *firestore.Client
}

func NewFirestore(ctx context.Context, projectID string) (*FirestoreStore, error) {
	client, err := firestore.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("firestore.NewClient: %w", err)
	}
	return &FirestoreStore{client: client}, nil
}

func (s *FirestoreStore) Close() error {
	return s.client.Close()
}

// docID hashes arbitrary strings into a Firestore-safe document ID;
// identity keys may contain slashes, which Firestore forbids.
func docID(v string) string {
	h := sha256.Sum256([]byte(v))
	return hex.EncodeToString(h[:])
}

func searchDocID(search models.SavedSearch) string {
	return docID(search.Query + "|" + search.Email)
}

// searchDoc is the stored shape of a saved search. Document IDs are
// content hashes, so listing order has to come from an explicit
// creation timestamp, stamped server-side to be immune to clock skew
// between instances.
type searchDoc struct {
	Query     string    `firestore:"query"`
	Email     string    `firestore:"email,omitempty"`
	CreatedAt time.Time `firestore:"created_at,serverTimestamp"`
}

// newSearchDoc leaves CreatedAt zero so Firestore substitutes the
// server time on write.
func newSearchDoc(search models.SavedSearch) searchDoc {
	return searchDoc{Query: search.Query, Email: search.Email}
}

func (s *FirestoreStore) CreateSearch(ctx context.Context, search models.SavedSearch) (models.SavedSearch, error) {
	search.ID = searchDocID(search)
	docRef := s.client.Collection(searchCollection).Doc(search.ID)
	// Create fails if the document already exists.
	if _, err := docRef.Create(ctx, newSearchDoc(search)); err != nil {
		if status.Code(err) == codes.AlreadyExists {
			return models.SavedSearch{}, models.ErrSearchExists
		}
		return models.SavedSearch{}, fmt.Errorf("create saved search: %w", err)
	}
	return search, nil
}

func (s *FirestoreStore) ListSearches(ctx context.Context) ([]models.SavedSearch, error) {
	iter := s.client.Collection(searchCollection).
		OrderBy("created_at", firestore.Desc).
		Documents(ctx)
	defer iter.Stop()

	var searches []models.SavedSearch
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("iterate saved searches: %w", err)
		}
		var doc searchDoc
		if err := snap.DataTo(&doc); err != nil {
			return nil, fmt.Errorf("unmarshal saved search %s: %w", snap.Ref.ID, err)
		}
		searches = append(searches, models.SavedSearch{
			ID:    snap.Ref.ID,
			Query: doc.Query,
			Email: doc.Email,
		})
	}
	return searches, nil
}

func (s *FirestoreStore) Unseen(ctx context.Context, keys []string) ([]string, error) {
	if len(keys) == 0 {
		return nil, nil
	}

	refs := make([]*firestore.DocumentRef, len(keys))
	for i, k := range keys {
		refs[i] = s.client.Collection(seenCollection).Doc(docID(k))
	}

	docs, err := s.client.GetAll(ctx, refs)
	if err != nil {
		return nil, fmt.Errorf("read seen set: %w", err)
	}

	var unseen []string
	for i, doc := range docs {
		if !doc.Exists() {
			unseen = append(unseen, keys[i])
		}
	}
	return unseen, nil
}

func (s *FirestoreStore) MarkSeen(ctx context.Context, keys []string) error {
	if len(keys) == 0 {
		return nil
	}

	bulk := s.client.BulkWriter(ctx)
	defer bulk.End()

	for _, k := range keys {
		ref := s.client.Collection(seenCollection).Doc(docID(k))
		if _, err := bulk.Set(ref, map[string]any{"key": k}); err != nil {
			return fmt.Errorf("queue seen write for %s: %w", k, err)
		}
	}
	bulk.Flush()
	return nil
}
