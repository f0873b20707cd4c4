package pricing

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quantsim/pkg/clock"
	"quantsim/pkg/common"
	"quantsim/pkg/schedule"
	"quantsim/pkg/utility/fixed"
)

func newTestProvider() *StaticProvider {
	p := NewStaticProvider()
	p.AddBar(common.Bar{
		Ticker: "AAA", TimeStamp: day(1), Period: 24 * time.Hour,
		Open:  fixed.FromInt(100, 0),
		High:  fixed.FromInt(105, 0),
		Low:   fixed.FromInt(95, 0),
		Close: fixed.FromInt(102, 0),
	})
	p.AddBar(common.Bar{
		Ticker: "AAA", TimeStamp: day(2), Period: 24 * time.Hour,
		Open:  fixed.FromInt(103, 0),
		High:  fixed.FromInt(108, 0),
		Low:   fixed.FromInt(99, 0),
		Close: fixed.FromInt(107, 0),
	})
	return p
}

func newTestGuard(start time.Time) (*Guard, *clock.Settable) {
	clk := clock.NewSettable(start)
	return NewGuard(newTestProvider(), clk, schedule.NewCalendar()), clk
}

func TestGuard_GetPriceClampsLookAhead(t *testing.T) {
	guard, _ := newTestGuard(day(2).Add(10 * time.Hour))
	ctx := context.Background()

	// Mid-session on day 2: day 2's bar has not closed yet, only day 1 is
	// visible.
	frame, err := guard.GetPrice(ctx, []common.Ticker{"AAA"}, []common.PriceField{common.FieldClose}, day(1), day(2))
	require.NoError(t, err)
	assert.Equal(t, 1, frame.Len())

	_, ok := frame.Value(day(2), "AAA", common.FieldClose)
	assert.False(t, ok, "day 2 close must not be visible mid-session")
}

func TestGuard_GetPriceAfterClose(t *testing.T) {
	guard, _ := newTestGuard(day(2).Add(16 * time.Hour))
	ctx := context.Background()

	frame, err := guard.GetPrice(ctx, []common.Ticker{"AAA"}, []common.PriceField{common.FieldClose}, day(1), day(2))
	require.NoError(t, err)
	assert.Equal(t, 2, frame.Len())

	v, ok := frame.Value(day(2), "AAA", common.FieldClose)
	require.True(t, ok)
	assert.Equal(t, "107", v.String())
}

func TestGuard_LastAvailablePrice(t *testing.T) {
	openTrigger := day(2).Add(9*time.Hour + 30*time.Minute)
	guard, clk := newTestGuard(openTrigger)
	ctx := context.Background()

	// At the open trigger the day's open is already visible even though the
	// bar has not closed.
	prices, err := guard.LastAvailablePrice(ctx, []common.Ticker{"AAA"})
	require.NoError(t, err)
	require.Contains(t, prices, common.Ticker("AAA"))
	assert.Equal(t, "103", prices["AAA"].String())

	// Mid-session the open stays the last available sample.
	require.NoError(t, clk.Set(day(2).Add(12*time.Hour)))
	prices, err = guard.LastAvailablePrice(ctx, []common.Ticker{"AAA"})
	require.NoError(t, err)
	assert.Equal(t, "103", prices["AAA"].String())

	// After the close trigger the close takes over.
	require.NoError(t, clk.Set(day(2).Add(16*time.Hour)))
	prices, err = guard.LastAvailablePrice(ctx, []common.Ticker{"AAA"})
	require.NoError(t, err)
	assert.Equal(t, "107", prices["AAA"].String())
}

func TestGuard_CurrentPrice(t *testing.T) {
	openTrigger := day(2).Add(9*time.Hour + 30*time.Minute)
	guard, clk := newTestGuard(openTrigger)
	ctx := context.Background()

	prices, err := guard.CurrentPrice(ctx, []common.Ticker{"AAA"})
	require.NoError(t, err)
	require.Contains(t, prices, common.Ticker("AAA"))
	assert.Equal(t, "103", prices["AAA"].String())

	// Between triggers there is no current sample; the ticker is omitted
	// rather than forward-filled.
	require.NoError(t, clk.Set(day(2).Add(12*time.Hour)))
	prices, err = guard.CurrentPrice(ctx, []common.Ticker{"AAA"})
	require.NoError(t, err)
	assert.NotContains(t, prices, common.Ticker("AAA"))
}

func TestGuard_CurrentPriceOmitsMissingTickers(t *testing.T) {
	openTrigger := day(2).Add(9*time.Hour + 30*time.Minute)
	guard, _ := newTestGuard(openTrigger)

	prices, err := guard.CurrentPrice(context.Background(), []common.Ticker{"AAA", "BBB"})
	require.NoError(t, err)
	assert.Contains(t, prices, common.Ticker("AAA"))
	assert.NotContains(t, prices, common.Ticker("BBB"))
}

func TestGuard_HistoricalPrice(t *testing.T) {
	guard, _ := newTestGuard(day(2).Add(10 * time.Hour))
	ctx := context.Background()

	// Only day 1 has closed, so one bar is servable.
	frame, err := guard.HistoricalPrice(ctx, []common.Ticker{"AAA"}, []common.PriceField{common.FieldClose}, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, frame.Len())

	v, ok := frame.Value(day(1), "AAA", common.FieldClose)
	require.True(t, ok)
	assert.Equal(t, "102", v.String())

	_, err = guard.HistoricalPrice(ctx, []common.Ticker{"AAA"}, []common.PriceField{common.FieldClose}, 2)
	assert.ErrorIs(t, err, ErrInsufficientData)
}

func TestBundle_RejectsOutsideQueries(t *testing.T) {
	clk := clock.NewSettable(day(2).Add(16 * time.Hour))
	calendar := schedule.NewCalendar()
	ctx := context.Background()

	bundle, err := NewBundle(ctx, newTestProvider(), []common.Ticker{"AAA"},
		[]common.PriceField{common.FieldOpen, common.FieldClose}, day(1), day(2), clk, calendar)
	require.NoError(t, err)

	_, err = bundle.GetPrice(ctx, []common.Ticker{"BBB"}, []common.PriceField{common.FieldClose}, day(1), day(2))
	assert.ErrorIs(t, err, ErrOutsideBundle)

	_, err = bundle.GetPrice(ctx, []common.Ticker{"AAA"}, []common.PriceField{common.FieldLow}, day(1), day(2))
	assert.ErrorIs(t, err, ErrOutsideBundle)

	_, err = bundle.GetPrice(ctx, []common.Ticker{"AAA"}, []common.PriceField{common.FieldClose},
		day(1).AddDate(0, 0, -10), day(2))
	assert.ErrorIs(t, err, ErrOutsideBundle)
}

func TestBundle_ClampsLikeGuard(t *testing.T) {
	clk := clock.NewSettable(day(2).Add(10 * time.Hour))
	calendar := schedule.NewCalendar()
	ctx := context.Background()

	bundle, err := NewBundle(ctx, newTestProvider(), []common.Ticker{"AAA"},
		[]common.PriceField{common.FieldClose}, day(1), day(2), clk, calendar)
	require.NoError(t, err)

	frame, err := bundle.GetPrice(ctx, []common.Ticker{"AAA"}, []common.PriceField{common.FieldClose}, day(1), day(2))
	require.NoError(t, err)
	assert.Equal(t, 1, frame.Len())
}
