// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package sensors

import (
	"bufio"
	"context"
	"io"
	"strings"

	nmea "github.com/adrianmo/go-nmea"
	"github.com/rs/zerolog/log"

	"github.com/relabs-tech/hunt_navigator/internal/gps"
	"github.com/relabs-tech/hunt_navigator/internal/orientation"
)

// NMEAReader accumulates NMEA sentences into fixes. RMC drives the fix
// (one fix per RMC), GGA contributes HDOP, HDT yields a true heading.
type NMEAReader struct {
	current gps.Fix
}

// Update is what one sentence produced. At most one field is set.
type Update struct {
	Fix     *gps.Fix
	Heading *orientation.Event
}

// Parse handles a single line. ok is false for blank lines, non-NMEA noise,
// parse errors and sentence types that do not produce output.
func (r *NMEAReader) Parse(line string) (Update, bool) {
	line = strings.TrimSpace(line)
	if line == "" {
		return Update{}, false
	}
	// NMEA sentences usually start with '$'
	if !strings.HasPrefix(line, "$") {
		return Update{}, false
	}

	sentence, err := nmea.Parse(line)
	if err != nil {
		// noisy GPS or partial sentences
		log.Debug().Err(err).Str("line", line).Msg("gps: NMEA parse error")
		return Update{}, false
	}

	switch sentence.DataType() {
	case nmea.TypeRMC:
		m := sentence.(nmea.RMC)
		r.current.Time = m.Time.String()
		r.current.Date = m.Date.String()
		r.current.Latitude = m.Latitude
		r.current.Longitude = m.Longitude
		r.current.SpeedKnots = m.Speed
		r.current.CourseDeg = m.Course
		r.current.Validity = m.Validity
		fix := r.current
		return Update{Fix: &fix}, true

	case nmea.TypeGGA:
		m := sentence.(nmea.GGA)
		r.current.HDOP = m.HDOP
		return Update{}, false

	case nmea.TypeHDT:
		m := sentence.(nmea.HDT)
		if !m.True {
			return Update{}, false
		}
		ev := orientation.CompassEvent(m.Heading)
		return Update{Heading: &ev}, true

	default:
		// ignore other sentence types (GSA, GSV, VTG, ...)
		return Update{}, false
	}
}

// ReadNMEA reads lines from rd until EOF, a read error, or ctx is done,
// handing fixes and headings to the callbacks. Either callback may be nil.
func ReadNMEA(ctx context.Context, rd io.Reader, onFix func(gps.Fix), onHeading func(orientation.Event)) error {
	reader := bufio.NewReader(rd)
	var parser NMEAReader

	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		line, err := reader.ReadString('\n')
		if line != "" {
			if u, ok := parser.Parse(line); ok {
				switch {
				case u.Fix != nil && onFix != nil:
					onFix(*u.Fix)
				case u.Heading != nil && onHeading != nil:
					onHeading(*u.Heading)
				}
			}
		}
		if err != nil {
			if err == io.EOF {
				return nil
			}
			return err
		}
	}
}
