// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package sensors

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"

	serial "github.com/jacobsa/go-serial/serial"
	"github.com/rs/zerolog/log"
)

// SerialGPS is a sensor gateway backed by an NMEA receiver on a serial port.
// RMC fixes feed position watches, HDT sentences feed orientation watches.
type SerialGPS struct {
	broker *Broker
	opts   serial.OpenOptions
	open   func(serial.OpenOptions) (io.ReadWriteCloser, error)

	mu   sync.Mutex
	port io.ReadWriteCloser
}

// SerialOptions returns the 8N1 options used for u-blox style receivers.
func SerialOptions(portName string, baudRate int) serial.OpenOptions {
	return serial.OpenOptions{
		PortName:              portName,
		BaudRate:              uint(baudRate),
		DataBits:              8,
		StopBits:              1,
		MinimumReadSize:       1,
		ParityMode:            serial.PARITY_NONE,
		InterCharacterTimeout: 0,
	}
}

// NewSerialGPS prepares a receiver on portName. The port is opened by
// RequestPermission or Run.
func NewSerialGPS(portName string, baudRate int) *SerialGPS {
	return &SerialGPS{
		broker: NewBroker(),
		opts:   SerialOptions(portName, baudRate),
		open:   serial.Open,
	}
}

// Gateway exposes the receiver as both sensor streams.
func (s *SerialGPS) Gateway() Gateway {
	g := s.broker.Gateway()
	return Gateway{
		Positions:    serialPositions{s, g.Positions},
		Orientations: serialOrientations{s, g.Orientations},
	}
}

// Open opens the serial port once. EACCES maps to ErrPermissionDenied so the
// game can tell the player to fix udev rules instead of waiting for a fix.
func (s *SerialGPS) Open() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.port != nil {
		return nil
	}
	port, err := s.open(s.opts)
	if err != nil {
		if errors.Is(err, os.ErrPermission) {
			return fmt.Errorf("open %s: %w", s.opts.PortName, ErrPermissionDenied)
		}
		return fmt.Errorf("open %s: %w: %v", s.opts.PortName, ErrPositionUnavailable, err)
	}
	s.port = port
	log.Info().Str("port", s.opts.PortName).Uint("baud", s.opts.BaudRate).Msg("gps: serial port opened")
	return nil
}

// Run reads NMEA from the port until ctx is done. A read error is reported to
// position watches as ErrPositionUnavailable before Run returns it.
func (s *SerialGPS) Run(ctx context.Context) error {
	if err := s.Open(); err != nil {
		return err
	}
	s.mu.Lock()
	port := s.port
	s.mu.Unlock()

	stop := context.AfterFunc(ctx, func() { s.Close() })
	defer stop()

	err := ReadNMEA(ctx, port, s.broker.PublishFix, s.broker.PublishOrientation)
	if err != nil && ctx.Err() == nil {
		log.Warn().Err(err).Msg("gps: serial read error")
		s.broker.PublishPositionError(fmt.Errorf("%w: %v", ErrPositionUnavailable, err))
		return err
	}
	return nil
}

// Close releases the serial port.
func (s *SerialGPS) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.port == nil {
		return nil
	}
	err := s.port.Close()
	s.port = nil
	return err
}

type serialPositions struct {
	s *SerialGPS
	PositionSource
}

func (p serialPositions) RequestPermission(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return p.s.Open()
}

type serialOrientations struct {
	s *SerialGPS
	OrientationSource
}

func (o serialOrientations) RequestPermission(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return o.s.Open()
}

var (
	_ PositionSource    = serialPositions{}
	_ OrientationSource = serialOrientations{}
)
