package sensors

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"testing"

	serial "github.com/jacobsa/go-serial/serial"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relabs-tech/hunt_navigator/internal/gps"
	"github.com/relabs-tech/hunt_navigator/internal/orientation"
)

// sentence wraps an NMEA body with '$' and its XOR checksum.
func sentence(body string) string {
	var sum byte
	for i := 0; i < len(body); i++ {
		sum ^= body[i]
	}
	return fmt.Sprintf("$%s*%02X", body, sum)
}

const (
	rmcBody     = "GPRMC,123519,A,4807.038,N,01131.000,E,022.4,084.4,230394,003.1,W"
	rmcVoidBody = "GPRMC,123520,V,4807.038,N,01131.000,E,000.0,000.0,230394,003.1,W"
	ggaBody     = "GPGGA,123519,4807.038,N,01131.000,E,1,08,0.9,545.4,M,46.9,M,,"
	hdtBody     = "GPHDT,274.07,T"
)

func TestNMEAReaderRMC(t *testing.T) {
	var r NMEAReader
	u, ok := r.Parse(sentence(rmcBody))
	require.True(t, ok)
	require.NotNil(t, u.Fix)

	assert.InDelta(t, 48.1173, u.Fix.Latitude, 1e-4)
	assert.InDelta(t, 11.516666, u.Fix.Longitude, 1e-4)
	assert.InDelta(t, 22.4, u.Fix.SpeedKnots, 1e-9)
	assert.InDelta(t, 84.4, u.Fix.CourseDeg, 1e-9)
	assert.Equal(t, gps.Valid, u.Fix.Validity)
	assert.False(t, u.Fix.IsVoid())
}

func TestNMEAReaderGGAThenRMCCarriesHDOP(t *testing.T) {
	var r NMEAReader
	_, ok := r.Parse(sentence(ggaBody))
	assert.False(t, ok)

	u, ok := r.Parse(sentence(rmcBody))
	require.True(t, ok)
	assert.InDelta(t, 0.9, u.Fix.HDOP, 1e-9)
}

func TestNMEAReaderVoidFix(t *testing.T) {
	var r NMEAReader
	u, ok := r.Parse(sentence(rmcVoidBody))
	require.True(t, ok)
	assert.True(t, u.Fix.IsVoid())
}

func TestNMEAReaderHDT(t *testing.T) {
	var r NMEAReader
	u, ok := r.Parse(sentence(hdtBody))
	require.True(t, ok)
	require.NotNil(t, u.Heading)

	h, ok := u.Heading.Reading().Heading()
	require.True(t, ok)
	assert.InDelta(t, 274.07, h, 1e-9)
}

func TestNMEAReaderIgnoresNoise(t *testing.T) {
	var r NMEAReader
	for _, line := range []string{
		"",
		"   ",
		"garbage",
		"$GPRMC,broken*00",
		sentence("GPGSA,A,3,04,05,,09,12,,,24,,,,,2.5,1.3,2.1"),
	} {
		_, ok := r.Parse(line)
		assert.False(t, ok, "line %q", line)
	}
}

func TestReadNMEA(t *testing.T) {
	input := strings.Join([]string{
		sentence(ggaBody),
		"noise",
		sentence(rmcBody),
		sentence(hdtBody),
		sentence(rmcVoidBody),
	}, "\r\n")

	var fixes []gps.Fix
	var headings []orientation.Event
	err := ReadNMEA(context.Background(), strings.NewReader(input),
		func(f gps.Fix) { fixes = append(fixes, f) },
		func(e orientation.Event) { headings = append(headings, e) },
	)
	require.NoError(t, err)
	require.Len(t, fixes, 2)
	assert.Equal(t, gps.Valid, fixes[0].Validity)
	assert.Equal(t, gps.Void, fixes[1].Validity)
	require.Len(t, headings, 1)
}

func TestReadNMEAStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := ReadNMEA(ctx, strings.NewReader(sentence(rmcBody)+"\n"), nil, nil)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestBrokerWatchAndStop(t *testing.T) {
	b := NewBroker()
	var fixes []gps.Fix
	var errs []error
	sub, err := b.Positions().WatchPosition(WatchOptions{HighAccuracy: true},
		func(f gps.Fix) { fixes = append(fixes, f) },
		func(err error) { errs = append(errs, err) },
	)
	require.NoError(t, err)
	assert.Equal(t, 1, b.PositionWatchers())

	b.PublishFix(gps.Fix{Latitude: 1})
	b.PublishPositionError(ErrPositionUnavailable)
	sub.Stop()
	sub.Stop()
	b.PublishFix(gps.Fix{Latitude: 2})

	require.Len(t, fixes, 1)
	assert.Equal(t, 1.0, fixes[0].Latitude)
	require.Len(t, errs, 1)
	assert.ErrorIs(t, errs[0], ErrPositionUnavailable)
	assert.Equal(t, 0, b.PositionWatchers())
}

func TestBrokerOrientation(t *testing.T) {
	b := NewBroker()
	var readings []orientation.Reading
	sub, err := b.Orientations().WatchOrientation(func(r orientation.Reading) {
		readings = append(readings, r)
	})
	require.NoError(t, err)
	defer sub.Stop()

	b.PublishOrientation(orientation.AlphaEvent(90))
	b.PublishOrientation(orientation.Event{})

	require.Len(t, readings, 2)
	assert.Equal(t, orientation.Alpha, readings[0].Kind)
	assert.Equal(t, orientation.None, readings[1].Kind)
}

func TestBrokerPermissionDenied(t *testing.T) {
	b := NewBroker()
	b.SetPermission(true, false)

	err := b.Gateway().RequestPermissions(context.Background())
	assert.ErrorIs(t, err, ErrPermissionDenied)

	_, err = b.Orientations().WatchOrientation(func(orientation.Reading) {})
	assert.ErrorIs(t, err, ErrPermissionDenied)

	_, err = b.Positions().WatchPosition(WatchOptions{}, func(gps.Fix) {}, nil)
	assert.NoError(t, err)

	b.SetPermission(true, true)
	assert.NoError(t, b.Gateway().RequestPermissions(context.Background()))
}

type fakePort struct {
	io.Reader
	closed bool
}

func (p *fakePort) Write(b []byte) (int, error) { return len(b), nil }
func (p *fakePort) Close() error {
	p.closed = true
	return nil
}

func TestSerialGPSFeedsWatchers(t *testing.T) {
	port := &fakePort{Reader: strings.NewReader(sentence(rmcBody) + "\r\n" + sentence(hdtBody) + "\r\n")}
	s := NewSerialGPS("/dev/fake", 9600)
	s.open = func(serial.OpenOptions) (io.ReadWriteCloser, error) { return port, nil }

	gw := s.Gateway()
	require.NoError(t, gw.RequestPermissions(context.Background()))

	var fixes []gps.Fix
	var readings []orientation.Reading
	_, err := gw.Positions.WatchPosition(WatchOptions{}, func(f gps.Fix) { fixes = append(fixes, f) }, nil)
	require.NoError(t, err)
	_, err = gw.Orientations.WatchOrientation(func(r orientation.Reading) { readings = append(readings, r) })
	require.NoError(t, err)

	require.NoError(t, s.Run(context.Background()))
	require.Len(t, fixes, 1)
	require.Len(t, readings, 1)
	assert.Equal(t, orientation.Compass, readings[0].Kind)

	require.NoError(t, s.Close())
	assert.True(t, port.closed)
}

func TestSerialGPSPermissionDenied(t *testing.T) {
	s := NewSerialGPS("/dev/ttyAMA0", 9600)
	s.open = func(serial.OpenOptions) (io.ReadWriteCloser, error) {
		return nil, &os.PathError{Op: "open", Path: "/dev/ttyAMA0", Err: os.ErrPermission}
	}
	err := s.Gateway().RequestPermissions(context.Background())
	assert.ErrorIs(t, err, ErrPermissionDenied)
}

func TestSerialGPSMissingPort(t *testing.T) {
	s := NewSerialGPS("/dev/none", 9600)
	s.open = func(serial.OpenOptions) (io.ReadWriteCloser, error) {
		return nil, errors.New("no such device")
	}
	err := s.Open()
	assert.ErrorIs(t, err, ErrPositionUnavailable)
	assert.NotErrorIs(t, err, ErrPermissionDenied)
}

type errReader struct{}

func (errReader) Read([]byte) (int, error) { return 0, errors.New("device unplugged") }

func TestSerialGPSReadErrorReachesWatchers(t *testing.T) {
	s := NewSerialGPS("/dev/fake", 9600)
	s.open = func(serial.OpenOptions) (io.ReadWriteCloser, error) { return &fakePort{Reader: errReader{}}, nil }

	var errs []error
	_, err := s.Gateway().Positions.WatchPosition(WatchOptions{}, func(gps.Fix) {}, func(err error) { errs = append(errs, err) })
	require.NoError(t, err)

	assert.Error(t, s.Run(context.Background()))
	require.Len(t, errs, 1)
	assert.ErrorIs(t, errs[0], ErrPositionUnavailable)
}

func TestMQTTGatewayHandlers(t *testing.T) {
	g := &MQTTGateway{Broker: NewBroker()}
	var fixes []gps.Fix
	var readings []orientation.Reading
	var errs []error
	_, err := g.Positions().WatchPosition(WatchOptions{}, func(f gps.Fix) { fixes = append(fixes, f) }, func(err error) { errs = append(errs, err) })
	require.NoError(t, err)
	_, err = g.Orientations().WatchOrientation(func(r orientation.Reading) { readings = append(readings, r) })
	require.NoError(t, err)

	g.HandleFix([]byte(`{"lat": -27.63, "lon": -48.68, "validity": "A"}`))
	g.HandleFix([]byte(`not json`))
	g.HandleHeading([]byte(`{"alpha": 90}`))
	g.HandleHeading([]byte(`{"webkitCompassHeading": 45}`))
	g.HandleHeading([]byte(`{"roll": 1, "pitch": 2, "yaw": 123}`))
	g.HandleHeading([]byte(`{}`))
	g.ConnectionLost(errors.New("EOF"))

	require.Len(t, fixes, 1)
	assert.InDelta(t, -27.63, fixes[0].Latitude, 1e-9)

	require.Len(t, readings, 4)
	h, _ := readings[0].Heading()
	assert.Equal(t, 270.0, h)
	h, _ = readings[1].Heading()
	assert.Equal(t, 45.0, h)
	h, _ = readings[2].Heading()
	assert.Equal(t, 123.0, h)
	assert.Equal(t, orientation.None, readings[3].Kind)

	require.Len(t, errs, 1)
	assert.ErrorIs(t, errs[0], ErrPositionUnavailable)
}
