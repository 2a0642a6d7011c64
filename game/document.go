package game

import (
	"errors"
	"fmt"
	"time"

	"github.com/cespare/xxhash"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"
)

// Document field names. These are the keys of the remote document and must
// not change.
const (
	fieldID             = "id"
	fieldPlayer1        = "player1"
	fieldPlayer2        = "player2"
	fieldBoard          = "board"
	fieldPlayer1Letters = "player1Letters"
	fieldPlayer2Letters = "player2Letters"
	fieldPlayer1Score   = "player1Score"
	fieldPlayer2Score   = "player2Score"
	fieldCurrentTurn    = "currentTurn"
	fieldStatus         = "status"
	fieldRevision       = "revision"
	fieldUpdatedAt      = "updatedAt"
)

var ErrBadDocument = errors.New("malformed game document")

// ToDocument converts the state to the schemaless document the store and
// the change feed carry.
func (st *State) ToDocument() (*structpb.Struct, error) {
	board := make(map[string]any, len(st.Board))
	for k, v := range st.Board {
		board[k] = v
	}
	m := map[string]any{
		fieldID:             st.ID,
		fieldPlayer1:        st.Player1,
		fieldPlayer2:        st.Player2,
		fieldBoard:          board,
		fieldPlayer1Letters: stringsToAny(st.Player1Letters),
		fieldPlayer2Letters: stringsToAny(st.Player2Letters),
		fieldPlayer1Score:   st.Player1Score,
		fieldPlayer2Score:   st.Player2Score,
		fieldCurrentTurn:    st.CurrentTurn,
		fieldStatus:         string(st.Status),
		fieldRevision:       st.Revision,
	}
	if !st.UpdatedAt.IsZero() {
		m[fieldUpdatedAt] = st.UpdatedAt.UTC().Format(time.RFC3339Nano)
	}
	return structpb.NewStruct(m)
}

// StateFromDocument parses a document. Missing fields take their zero
// value; fields of the wrong kind are an error.
func StateFromDocument(doc *structpb.Struct) (*State, error) {
	if doc == nil {
		return nil, fmt.Errorf("%w: nil document", ErrBadDocument)
	}
	fields := doc.GetFields()
	st := &State{Board: map[string]string{}}
	var err error

	strs := []struct {
		name string
		dst  *string
	}{
		{fieldID, &st.ID},
		{fieldPlayer1, &st.Player1},
		{fieldPlayer2, &st.Player2},
		{fieldCurrentTurn, &st.CurrentTurn},
	}
	for _, s := range strs {
		if *s.dst, err = stringField(fields, s.name); err != nil {
			return nil, err
		}
	}
	status, err := stringField(fields, fieldStatus)
	if err != nil {
		return nil, err
	}
	st.Status = Status(status)
	if !st.Status.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", ErrBadDocument, status)
	}

	if st.Player1Score, err = intField(fields, fieldPlayer1Score); err != nil {
		return nil, err
	}
	if st.Player2Score, err = intField(fields, fieldPlayer2Score); err != nil {
		return nil, err
	}
	rev, err := intField(fields, fieldRevision)
	if err != nil {
		return nil, err
	}
	st.Revision = int64(rev)

	if st.Player1Letters, err = lettersField(fields, fieldPlayer1Letters); err != nil {
		return nil, err
	}
	if st.Player2Letters, err = lettersField(fields, fieldPlayer2Letters); err != nil {
		return nil, err
	}

	if v, ok := fields[fieldBoard]; ok && !isNull(v) {
		bs := v.GetStructValue()
		if bs == nil {
			return nil, fmt.Errorf("%w: %v is not a map", ErrBadDocument, fieldBoard)
		}
		for k, lv := range bs.GetFields() {
			sv, ok := lv.GetKind().(*structpb.Value_StringValue)
			if !ok {
				return nil, fmt.Errorf("%w: board square %q is not a string", ErrBadDocument, k)
			}
			st.Board[k] = sv.StringValue
		}
	}

	ts, err := stringField(fields, fieldUpdatedAt)
	if err != nil {
		return nil, err
	}
	if ts != "" {
		if st.UpdatedAt, err = time.Parse(time.RFC3339Nano, ts); err != nil {
			return nil, fmt.Errorf("%w: %v: %w", ErrBadDocument, fieldUpdatedAt, err)
		}
	}
	return st, nil
}

// MarshalState encodes the state in the binary wire format. The output is
// deterministic for equal states.
func MarshalState(st *State) ([]byte, error) {
	doc, err := st.ToDocument()
	if err != nil {
		return nil, err
	}
	return proto.MarshalOptions{Deterministic: true}.Marshal(doc)
}

func UnmarshalState(bts []byte) (*State, error) {
	doc := &structpb.Struct{}
	if err := proto.Unmarshal(bts, doc); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBadDocument, err)
	}
	return StateFromDocument(doc)
}

// Fingerprint hashes the canonical encoding of a state. Two snapshots with
// the same revision and fingerprint carry the same content.
func Fingerprint(st *State) (uint64, error) {
	bts, err := MarshalState(st)
	if err != nil {
		return 0, err
	}
	return xxhash.Sum64(bts), nil
}

func isNull(v *structpb.Value) bool {
	_, ok := v.GetKind().(*structpb.Value_NullValue)
	return ok
}

func stringField(fields map[string]*structpb.Value, name string) (string, error) {
	v, ok := fields[name]
	if !ok || isNull(v) {
		return "", nil
	}
	sv, ok := v.GetKind().(*structpb.Value_StringValue)
	if !ok {
		return "", fmt.Errorf("%w: %v is not a string", ErrBadDocument, name)
	}
	return sv.StringValue, nil
}

func intField(fields map[string]*structpb.Value, name string) (int, error) {
	v, ok := fields[name]
	if !ok || isNull(v) {
		return 0, nil
	}
	nv, ok := v.GetKind().(*structpb.Value_NumberValue)
	if !ok {
		return 0, fmt.Errorf("%w: %v is not a number", ErrBadDocument, name)
	}
	n := nv.NumberValue
	if n != float64(int64(n)) {
		return 0, fmt.Errorf("%w: %v is not an integer", ErrBadDocument, name)
	}
	return int(n), nil
}

func lettersField(fields map[string]*structpb.Value, name string) ([]string, error) {
	v, ok := fields[name]
	if !ok || isNull(v) {
		return []string{}, nil
	}
	lv := v.GetListValue()
	if lv == nil {
		return nil, fmt.Errorf("%w: %v is not a list", ErrBadDocument, name)
	}
	out := make([]string, 0, len(lv.GetValues()))
	for i, item := range lv.GetValues() {
		sv, ok := item.GetKind().(*structpb.Value_StringValue)
		if !ok {
			return nil, fmt.Errorf("%w: %v[%d] is not a string", ErrBadDocument, name, i)
		}
		out = append(out, sv.StringValue)
	}
	return out, nil
}

func stringsToAny(ss []string) []any {
	out := make([]any, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}
