package uid

import (
	"crypto/sha256"
	"errors"
	"os"
	"strings"

	"github.com/bwmarrin/snowflake"
)

// ErrStableNodeIdentityUnavailable indicates no stable node identity is available.
var ErrStableNodeIdentityUnavailable = errors.New("uid: cannot determine stable node identity (machine-id/hostname unavailable)")

// Snowflake generates time-sortable int64 IDs safe across multiple nodes.
type Snowflake struct {
	node *snowflake.Node
}

// NewSnowflake creates a generator whose node number is derived from a stable
// node identity (/etc/machine-id, falling back to hostname).
func NewSnowflake() (*Snowflake, error) {
	src, err := machineIDOrHostname()
	if err != nil {
		return nil, err
	}

	sum := sha256.Sum256([]byte(src))
	nodeNum := int64(sum[0])<<2 | int64(sum[1])>>6 // 10-bit node space

	node, err := snowflake.NewNode(nodeNum)
	if err != nil {
		return nil, err
	}

	return &Snowflake{node: node}, nil
}

// Generate returns a new snowflake ID.
func (s *Snowflake) Generate() int64 {
	return s.node.Generate().Int64()
}

func machineIDOrHostname() (string, error) {
	if b, err := os.ReadFile("/etc/machine-id"); err == nil {
		if s := strings.TrimSpace(string(b)); s != "" {
			return s, nil
		}
	}

	if h, err := os.Hostname(); err == nil {
		if h = strings.TrimSpace(h); h != "" {
			return h, nil
		}
	}

	return "", ErrStableNodeIdentityUnavailable
}
