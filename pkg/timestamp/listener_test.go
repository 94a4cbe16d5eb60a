package timestamp_test

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/changhyeonkim/gorm-timestamp/internal/shared/testutil"
	"github.com/changhyeonkim/gorm-timestamp/pkg/timestamp"
)

type event struct {
	ID      int
	Created int64 `timestamp:"create;type:epoch"`
	Updated int64 `timestamp:"update;type:epoch"`
}

type detached struct {
	*Stamps
	Name string
}

func newListener(t *testing.T, opts ...timestamp.Option) (*timestamp.Listener, *clockwork.FakeClock, *testutil.LogRecorder) {
	t.Helper()

	clock := clockwork.NewFakeClockAt(now)
	recorder := testutil.NewLogRecorder(slog.LevelDebug)
	opts = append([]timestamp.Option{
		timestamp.WithClock(clock),
		timestamp.WithLogger(recorder.Logger()),
	}, opts...)
	return timestamp.NewListener(opts...), clock, recorder
}

func TestBeforeInsert_StampsBothFieldsWithOneInstant(t *testing.T) {
	// Given
	listener, _, _ := newListener(t)
	p := &post{Title: "hello"}

	// When
	listener.BeforeInsert(context.Background(), p)

	// Then
	require.NotNil(t, p.CreateTime)
	require.NotNil(t, p.UpdateTime)
	assert.True(t, p.CreateTime.Equal(now))
	assert.True(t, p.UpdateTime.Equal(*p.CreateTime))
	assert.NotSame(t, p.CreateTime, p.UpdateTime)
}

func TestBeforeInsert_KeepsPresetValue(t *testing.T) {
	// Given
	listener, _, _ := newListener(t)
	preset := time.Date(2001, 1, 1, 0, 0, 0, 0, time.UTC)
	p := &post{Stamps: Stamps{CreateTime: &preset}}

	// When
	listener.BeforeInsert(context.Background(), p)

	// Then
	assert.Same(t, &preset, p.CreateTime)
	require.NotNil(t, p.UpdateTime)
	assert.True(t, p.UpdateTime.Equal(now))
}

func TestBeforeInsert_Epoch(t *testing.T) {
	// Given
	listener, _, _ := newListener(t)
	e := &event{}

	// When
	listener.BeforeInsert(context.Background(), e)

	// Then
	assert.Equal(t, now.Unix(), e.Created)
	assert.Equal(t, now.Unix(), e.Updated)
}

func TestBeforeInsert_NotWritable(t *testing.T) {
	// Given
	accessor := testutil.NewMockFieldAccessor()
	accessor.CanSetFunc = func(_ any, name string) bool {
		return name != "CreateTime"
	}
	listener, _, recorder := newListener(t, timestamp.WithAccessor(accessor))
	p := &post{}

	// When
	listener.BeforeInsert(context.Background(), p)

	// Then: no read, no write, exactly one warning for the blocked field
	assert.Nil(t, p.CreateTime)
	assert.NotNil(t, p.UpdateTime)
	assert.Equal(t, 0, accessor.Reads("CreateTime"))
	assert.Equal(t, 0, accessor.Writes("CreateTime"))
	assert.Equal(t, 1, recorder.Count(slog.LevelWarn, "timestamp field is not writable"))

	field, ok := recorder.Attr("timestamp field is not writable", "field")
	require.True(t, ok)
	assert.Equal(t, "CreateTime", field.String())
}

func TestBeforeInsert_NilEmbeddedPointerIsNotWritable(t *testing.T) {
	// Given
	listener, _, recorder := newListener(t)
	d := &detached{Name: "no stamps"}

	// When
	listener.BeforeInsert(context.Background(), d)

	// Then
	assert.Nil(t, d.Stamps)
	assert.Equal(t, 2, recorder.Count(slog.LevelWarn, "timestamp field is not writable"))
}

func TestBeforeInsert_ReadErrorMeansNoPriorValue(t *testing.T) {
	// Given
	accessor := testutil.NewMockFieldAccessor()
	accessor.GetFunc = func(any, string) (any, error) {
		return nil, errors.New("boom")
	}
	listener, _, _ := newListener(t, timestamp.WithAccessor(accessor))
	preset := time.Date(2001, 1, 1, 0, 0, 0, 0, time.UTC)
	p := &post{Stamps: Stamps{CreateTime: &preset}}

	// When
	listener.BeforeInsert(context.Background(), p)

	// Then: the unreadable preset value is overwritten
	require.NotNil(t, p.CreateTime)
	assert.True(t, p.CreateTime.Equal(now))
}

func TestBeforeInsert_WriteErrorIsLogged(t *testing.T) {
	// Given
	accessor := testutil.NewMockFieldAccessor()
	accessor.SetFunc = func(any, string, any) error {
		return errors.New("read only")
	}
	listener, _, recorder := newListener(t, timestamp.WithAccessor(accessor))
	p := &post{}

	// When
	assert.NotPanics(t, func() {
		listener.BeforeInsert(context.Background(), p)
	})

	// Then
	assert.Nil(t, p.CreateTime)
	assert.Equal(t, 2, recorder.Count(slog.LevelWarn, "timestamp could not be written"))
}

func TestBeforeInsert_DebugTrace(t *testing.T) {
	// Given
	listener, _, recorder := newListener(t)

	// When
	listener.BeforeInsert(context.Background(), &event{})

	// Then
	assert.Equal(t, 2, recorder.Count(slog.LevelDebug, "setting timestamp"))
	assert.Equal(t, 2, recorder.Count(slog.LevelDebug, "timestamp written"))

	success, ok := recorder.Attr("timestamp written", "success")
	require.True(t, ok)
	assert.True(t, success.Bool())
}

func TestBeforeInsert_QuietWithoutDebug(t *testing.T) {
	// Given
	accessor := testutil.NewMockFieldAccessor()
	recorder := testutil.NewLogRecorder(slog.LevelInfo)
	listener := timestamp.NewListener(
		timestamp.WithNowFunc(func() time.Time { return now }),
		timestamp.WithLogger(recorder.Logger()),
		timestamp.WithAccessor(accessor),
	)

	// When
	listener.BeforeInsert(context.Background(), &event{})

	// Then: one read per field before writing, no read-back
	assert.Empty(t, recorder.Records())
	assert.Equal(t, 2, accessor.Reads(""))
	assert.Equal(t, 2, accessor.Writes(""))
}

func TestBeforeInsert_UnsupportedEntity(t *testing.T) {
	// Given
	listener, _, recorder := newListener(t)
	bad := &badShape{}

	// When
	listener.BeforeInsert(context.Background(), bad)

	// Then
	assert.Empty(t, bad.Created)
	assert.Equal(t, 1, recorder.Count(slog.LevelError, "timestamp markers could not be resolved"))
}

func TestBeforeUpdate_StampsUpdateFieldOnly(t *testing.T) {
	// Given
	listener, clock, _ := newListener(t)
	p := &post{}
	listener.BeforeInsert(context.Background(), p)
	created := p.CreateTime
	clock.Advance(90 * time.Second)

	// When
	listener.BeforeUpdate(context.Background(), p, timestamp.ChangeSet{
		"Title": {Old: "", New: "edited"},
	})

	// Then
	assert.Same(t, created, p.CreateTime)
	assert.True(t, p.CreateTime.Equal(now))
	require.NotNil(t, p.UpdateTime)
	assert.True(t, p.UpdateTime.Equal(now.Add(90*time.Second)))
}

func TestBeforeUpdate_ManualChangeWins(t *testing.T) {
	// Given
	listener, _, _ := newListener(t)
	manual := time.Date(2020, 5, 5, 5, 5, 5, 0, time.UTC)
	p := &post{Stamps: Stamps{UpdateTime: &manual}}

	// When
	listener.BeforeUpdate(context.Background(), p, timestamp.ChangeSet{
		"Title":      {New: "edited"},
		"UpdateTime": {New: &manual},
	})

	// Then
	assert.Same(t, &manual, p.UpdateTime)
}

func TestBeforeUpdate_EmptyChangeSetTouchesNothing(t *testing.T) {
	// Given
	accessor := testutil.NewMockFieldAccessor()
	listener, _, recorder := newListener(t, timestamp.WithAccessor(accessor))
	e := &event{Created: 1, Updated: 2}

	// When
	listener.BeforeUpdate(context.Background(), e, timestamp.ChangeSet{})
	listener.BeforeUpdate(context.Background(), e, nil)

	// Then
	assert.Equal(t, int64(2), e.Updated)
	assert.Equal(t, 0, accessor.Reads(""))
	assert.Equal(t, 0, accessor.Writes(""))
	assert.Equal(t, 0, accessor.WritabilityChecks(""))
	assert.Empty(t, recorder.Records())
}

func TestBeforeUpdate_NeverReadsCurrentValue(t *testing.T) {
	// Given
	accessor := testutil.NewMockFieldAccessor()
	recorder := testutil.NewLogRecorder(slog.LevelInfo)
	listener := timestamp.NewListener(
		timestamp.WithNowFunc(func() time.Time { return now }),
		timestamp.WithLogger(recorder.Logger()),
		timestamp.WithAccessor(accessor),
	)
	e := &event{Created: 1, Updated: 2}

	// When
	listener.BeforeUpdate(context.Background(), e, timestamp.ChangeSet{"ID": {Old: 0, New: 1}})

	// Then
	assert.Equal(t, int64(1), e.Created)
	assert.Equal(t, now.Unix(), e.Updated)
	assert.Equal(t, 0, accessor.Reads(""))
	assert.Equal(t, 1, accessor.Writes("Updated"))
	assert.Equal(t, 0, accessor.WritabilityChecks("Created"))
}

func TestBeforeUpdate_NotWritable(t *testing.T) {
	// Given
	accessor := testutil.NewMockFieldAccessor()
	accessor.CanSetFunc = func(any, string) bool { return false }
	listener, _, recorder := newListener(t, timestamp.WithAccessor(accessor))
	e := &event{Updated: 2}

	// When
	listener.BeforeUpdate(context.Background(), e, timestamp.ChangeSet{"ID": {}})

	// Then
	assert.Equal(t, int64(2), e.Updated)
	assert.Equal(t, 0, accessor.Writes(""))
	assert.Equal(t, 1, recorder.Count(slog.LevelWarn, "timestamp field is not writable"))
}

func TestBeforeUpdate_ManualChangeSkipsWritabilityCheck(t *testing.T) {
	// Given
	accessor := testutil.NewMockFieldAccessor()
	listener, _, recorder := newListener(t, timestamp.WithAccessor(accessor))

	// When
	listener.BeforeUpdate(context.Background(), &event{}, timestamp.ChangeSet{"Updated": {New: int64(5)}})

	// Then
	assert.Equal(t, 0, accessor.WritabilityChecks(""))
	assert.Equal(t, 0, accessor.Writes(""))
	assert.Empty(t, recorder.Records())
}

func TestRegisteredMarkers(t *testing.T) {
	// Given
	registry := timestamp.NewRegistry()
	require.NoError(t, registry.Register(&untagged{}, map[string]timestamp.Marker{
		"Created": timestamp.CreateMarker(timestamp.DateTime),
		"Updated": timestamp.UpdateMarker(timestamp.Epoch),
	}))
	listener, _, _ := newListener(t, timestamp.WithRegistry(registry))
	u := &untagged{}

	// When
	listener.BeforeInsert(context.Background(), u)

	// Then
	assert.True(t, u.Created.Equal(now))
	assert.Equal(t, now.Unix(), u.Updated)
}
