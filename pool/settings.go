package pool

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	EnvCompress       = "MANDELBROT_COMPRESS"
	EnvConnectTimeout = "MANDELBROT_CONNECT_TIMEOUT"
	EnvPeers          = "MANDELBROT_PEERS"
	EnvRank           = "MANDELBROT_RANK"
	EnvSession        = "MANDELBROT_SESSION"
	EnvSize           = "MANDELBROT_SIZE"
	EnvTransport      = "MANDELBROT_TRANSPORT"

	TransportHttp = "http"
	TransportTcp  = "tcp"

	DefaultConnectTimeout = 30 * time.Second
)

type Settings struct {
	Compress       bool
	ConnectTimeout time.Duration
	// Peers holds the listening address of every rank, indexed by rank
	Peers     []string
	Rank      int
	Session   string
	Size      int
	Transport string
}

// NewSession mints the identifier every rank of one launched pool shares
func NewSession() string {
	return uuid.NewString()
}

// SettingsFromEnvironment reads this process's pool identity. The second result is false when the process was not
// started as a pool member.
func SettingsFromEnvironment() (Settings, bool, error) {
	rankValue, ok := os.LookupEnv(EnvRank)
	if !ok {
		return Settings{}, false, nil
	}

	settings := Settings{
		Session:   os.Getenv(EnvSession),
		Transport: os.Getenv(EnvTransport),
	}

	var err error
	settings.Rank, err = strconv.Atoi(rankValue)
	if err != nil {
		return Settings{}, true, fmt.Errorf("%s is not a rank - %w", EnvRank, err)
	}
	settings.Size, err = strconv.Atoi(os.Getenv(EnvSize))
	if err != nil {
		return Settings{}, true, fmt.Errorf("%s is not a pool size - %w", EnvSize, err)
	}
	if peers := os.Getenv(EnvPeers); peers != "" {
		settings.Peers = strings.Split(peers, ",")
	}
	if compress := os.Getenv(EnvCompress); compress != "" {
		settings.Compress, err = strconv.ParseBool(compress)
		if err != nil {
			return Settings{}, true, fmt.Errorf("%s is not a boolean - %w", EnvCompress, err)
		}
	}
	if timeout := os.Getenv(EnvConnectTimeout); timeout != "" {
		settings.ConnectTimeout, err = time.ParseDuration(timeout)
		if err != nil {
			return Settings{}, true, fmt.Errorf("%s is not a duration - %w", EnvConnectTimeout, err)
		}
	}

	err = settings.Verify()
	if err != nil {
		return Settings{}, true, err
	}
	return settings, true, nil
}

// Environment is the inverse of SettingsFromEnvironment, used when launching a rank as a child process
func (s Settings) Environment() []string {
	return []string{
		fmt.Sprintf("%s=%t", EnvCompress, s.Compress),
		fmt.Sprintf("%s=%s", EnvConnectTimeout, s.ConnectTimeout),
		fmt.Sprintf("%s=%s", EnvPeers, strings.Join(s.Peers, ",")),
		fmt.Sprintf("%s=%d", EnvRank, s.Rank),
		fmt.Sprintf("%s=%s", EnvSession, s.Session),
		fmt.Sprintf("%s=%d", EnvSize, s.Size),
		fmt.Sprintf("%s=%s", EnvTransport, s.Transport),
	}
}

func (s *Settings) Verify() error {
	if s.Size < 1 {
		return fmt.Errorf("pool size %d is not positive", s.Size)
	}
	if s.Rank < 0 || s.Rank >= s.Size {
		return fmt.Errorf("rank %d outside of pool of %d", s.Rank, s.Size)
	}
	if len(s.Peers) != s.Size {
		return fmt.Errorf("%d peer addresses for a pool of %d", len(s.Peers), s.Size)
	}
	for rank, peer := range s.Peers {
		if peer == "" {
			return fmt.Errorf("rank %d has no address", rank)
		}
	}
	if s.Session == "" {
		return errors.New("no pool session")
	}
	if _, err := uuid.Parse(s.Session); err != nil {
		return fmt.Errorf("pool session %q is not a uuid - %w", s.Session, err)
	}

	switch s.Transport {
	case "":
		s.Transport = TransportTcp
	case TransportTcp, TransportHttp:
	default:
		return fmt.Errorf("unknown transport %q", s.Transport)
	}
	if s.ConnectTimeout <= 0 {
		s.ConnectTimeout = DefaultConnectTimeout
	}
	return nil
}

func (s Settings) String() string {
	str := "Pool Settings:\n"
	str += fmt.Sprintf("Rank: %d of %d\n", s.Rank, s.Size)
	str += fmt.Sprintf("Session: %s\n", s.Session)
	str += fmt.Sprintf("Transport: %s\n", s.Transport)
	str += fmt.Sprintf("Compress: %t\n", s.Compress)
	str += fmt.Sprintf("ConnectTimeout: %s\n", s.ConnectTimeout)
	str += fmt.Sprintf("Peers: %s\n", strings.Join(s.Peers, ", "))
	return str
}
