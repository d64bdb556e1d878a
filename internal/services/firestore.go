// Firestore REST implementation of [RemoteStore]
//
// Value encoding per https://firebase.google.com/docs/firestore/reference/rest/v1/Value
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/desertthunder/tvtrack/internal/models"
	"github.com/desertthunder/tvtrack/internal/shared"
)

const (
	firestoreBaseURL    = "https://firestore.googleapis.com/v1"
	firestoreCollection = "users"
	showsField          = "shows"
	defaultDatabase     = "(default)"
)

// FirestoreStore implements [RemoteStore] with one document per user at users/{uid}.
type FirestoreStore struct {
	baseURL    string
	projectID  string
	database   string
	httpClient *http.Client
}

// NewFirestoreStore creates a remote store. client must carry the user's OAuth credentials.
func NewFirestoreStore(config shared.RemoteConfig, client *http.Client) (*FirestoreStore, error) {
	if config.ProjectID == "" {
		return nil, fmt.Errorf("%w: remote.project_id is not set", shared.ErrInvalidConfig)
	}

	baseURL := strings.TrimRight(config.BaseURL, "/")
	if baseURL == "" {
		baseURL = firestoreBaseURL
	}
	database := config.Database
	if database == "" {
		database = defaultDatabase
	}
	if database != defaultDatabase && strings.ContainsAny(database, "/?#%() ") {
		return nil, fmt.Errorf("%w: invalid remote.database %q", shared.ErrInvalidConfig, database)
	}
	if client == nil {
		client = http.DefaultClient
	}

	return &FirestoreStore{
		baseURL:    baseURL,
		projectID:  config.ProjectID,
		database:   database,
		httpClient: client,
	}, nil
}

type firestoreDocument struct {
	Name   string                    `json:"name,omitempty"`
	Fields map[string]firestoreValue `json:"fields"`
}

// firestoreValue is a Firestore typed value. Exactly one field is set.
type firestoreValue struct {
	NullValue    *string         `json:"nullValue,omitempty"`
	BooleanValue *bool           `json:"booleanValue,omitempty"`
	IntegerValue *string         `json:"integerValue,omitempty"`
	DoubleValue  *float64        `json:"doubleValue,omitempty"`
	StringValue  *string         `json:"stringValue,omitempty"`
	ArrayValue   *firestoreArray `json:"arrayValue,omitempty"`
	MapValue     *firestoreMap   `json:"mapValue,omitempty"`
}

type firestoreArray struct {
	Values []firestoreValue `json:"values,omitempty"`
}

type firestoreMap struct {
	Fields map[string]firestoreValue `json:"fields,omitempty"`
}

// documentURL builds the REST path of the user document. Database ids are either "(default)"
// or lowercase letters, digits and hyphens, so they are used as-is.
func (s *FirestoreStore) documentURL(uid string) string {
	return fmt.Sprintf("%s/projects/%s/databases/%s/documents/%s/%s",
		s.baseURL, url.PathEscape(s.projectID), s.database, firestoreCollection, url.PathEscape(uid))
}

// Read implements [RemoteStore.Read]. A missing document is not an error.
func (s *FirestoreStore) Read(ctx context.Context, uid string) ([]models.TrackedShow, bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.documentURL(uid), nil)
	if err != nil {
		return nil, false, fmt.Errorf("%w: failed to create request: %v", shared.ErrTransport, err)
	}

	body, status, err := s.do(req)
	if err != nil {
		return nil, false, err
	}
	if status == http.StatusNotFound {
		return nil, false, nil
	}
	if status != http.StatusOK {
		return nil, false, fmt.Errorf("%w: read users/%s returned status %d: %s", shared.ErrTransport, uid, status, body)
	}

	var doc firestoreDocument
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, false, fmt.Errorf("%w: failed to decode document: %v", shared.ErrTransport, err)
	}

	field, ok := doc.Fields[showsField]
	if !ok {
		return nil, false, nil
	}

	shows, err := decodeShows(field)
	if err != nil {
		return nil, false, err
	}
	return shows, true, nil
}

// Write implements [RemoteStore.Write] with an update mask so other document fields are kept.
func (s *FirestoreStore) Write(ctx context.Context, uid string, shows []models.TrackedShow) error {
	value, err := encodeShows(shows)
	if err != nil {
		return err
	}

	payload, err := json.Marshal(firestoreDocument{Fields: map[string]firestoreValue{showsField: value}})
	if err != nil {
		return fmt.Errorf("%w: failed to marshal document: %v", shared.ErrTransport, err)
	}

	endpoint := s.documentURL(uid) + "?updateMask.fieldPaths=" + showsField
	req, err := http.NewRequestWithContext(ctx, http.MethodPatch, endpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("%w: failed to create request: %v", shared.ErrTransport, err)
	}
	req.Header.Set("Content-Type", "application/json")

	body, status, err := s.do(req)
	if err != nil {
		return err
	}
	if status != http.StatusOK {
		return fmt.Errorf("%w: write users/%s returned status %d: %s", shared.ErrTransport, uid, status, body)
	}
	return nil
}

func (s *FirestoreStore) do(req *http.Request) ([]byte, int, error) {
	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: request failed: %v", shared.ErrTransport, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: failed to read response: %v", shared.ErrTransport, err)
	}
	return body, resp.StatusCode, nil
}

// encodeShows converts the collection to a Firestore arrayValue by way of its JSON form.
func encodeShows(shows []models.TrackedShow) (firestoreValue, error) {
	if shows == nil {
		shows = []models.TrackedShow{}
	}

	raw, err := json.Marshal(shows)
	if err != nil {
		return firestoreValue{}, fmt.Errorf("failed to marshal shows: %w", err)
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var generic any
	if err := dec.Decode(&generic); err != nil {
		return firestoreValue{}, fmt.Errorf("failed to decode shows: %w", err)
	}

	return toFirestore(generic), nil
}

func decodeShows(v firestoreValue) ([]models.TrackedShow, error) {
	raw, err := json.Marshal(fromFirestore(v))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to re-encode shows: %v", shared.ErrTransport, err)
	}

	var shows []models.TrackedShow
	if err := json.Unmarshal(raw, &shows); err != nil {
		return nil, fmt.Errorf("%w: shows field has unexpected shape: %v", shared.ErrTransport, err)
	}
	if shows == nil {
		shows = []models.TrackedShow{}
	}
	return shows, nil
}

func toFirestore(v any) firestoreValue {
	switch t := v.(type) {
	case nil:
		null := "NULL_VALUE"
		return firestoreValue{NullValue: &null}
	case bool:
		return firestoreValue{BooleanValue: &t}
	case json.Number:
		if _, err := strconv.ParseInt(t.String(), 10, 64); err == nil {
			s := t.String()
			return firestoreValue{IntegerValue: &s}
		}
		f, _ := t.Float64()
		return firestoreValue{DoubleValue: &f}
	case string:
		return firestoreValue{StringValue: &t}
	case []any:
		values := make([]firestoreValue, len(t))
		for i, item := range t {
			values[i] = toFirestore(item)
		}
		return firestoreValue{ArrayValue: &firestoreArray{Values: values}}
	case map[string]any:
		fields := make(map[string]firestoreValue, len(t))
		for k, item := range t {
			fields[k] = toFirestore(item)
		}
		return firestoreValue{MapValue: &firestoreMap{Fields: fields}}
	default:
		s := fmt.Sprint(t)
		return firestoreValue{StringValue: &s}
	}
}

func fromFirestore(v firestoreValue) any {
	switch {
	case v.BooleanValue != nil:
		return *v.BooleanValue
	case v.IntegerValue != nil:
		if n, err := strconv.ParseInt(*v.IntegerValue, 10, 64); err == nil {
			return n
		}
		return *v.IntegerValue
	case v.DoubleValue != nil:
		return *v.DoubleValue
	case v.StringValue != nil:
		return *v.StringValue
	case v.ArrayValue != nil:
		out := make([]any, len(v.ArrayValue.Values))
		for i, item := range v.ArrayValue.Values {
			out[i] = fromFirestore(item)
		}
		return out
	case v.MapValue != nil:
		out := make(map[string]any, len(v.MapValue.Fields))
		for k, item := range v.MapValue.Fields {
			out[k] = fromFirestore(item)
		}
		return out
	default:
		return nil
	}
}
