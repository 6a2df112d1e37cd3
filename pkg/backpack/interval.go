package backpack

// Interval is a k-line bucket size accepted by the klines endpoint.
type Interval string

const (
	OneMinute      Interval = "1m"
	ThreeMinutes   Interval = "3m"
	FiveMinutes    Interval = "5m"
	FifteenMinutes Interval = "15m"
	ThirtyMinutes  Interval = "30m"
	OneHour        Interval = "1h"
	TwoHours       Interval = "2h"
	FourHours      Interval = "4h"
	SixHours       Interval = "6h"
	EightHours     Interval = "8h"
	TwelveHours    Interval = "12h"
	OneDay         Interval = "1d"
	ThreeDays      Interval = "3d"
	OneWeek        Interval = "1w"
	OneMonth       Interval = "1month"
)

func (i Interval) String() string {
	return string(i)
}
