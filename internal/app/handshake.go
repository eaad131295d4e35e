package app

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/BobbyBlanco400/nexus-cos-sub004/internal/core"
	"github.com/rs/zerolog/log"
)

const StatusAccepted = "ACCEPTED"

type HandshakeConfig struct {
	Secret string
	Module string
	Phase  int
	Mode   string
}

// HandshakeReply is what a peer gets back for a handshake frame.
type HandshakeReply struct {
	Status     string `json:"status"`
	Phase      int    `json:"phase"`
	Module     string `json:"module"`
	PolicyHash string `json:"policy_hash"`
	Mode       string `json:"mode"`
}

// PolicyFingerprint is the hex sha256 of the shared secret.
func PolicyFingerprint(secret string) string {
	sum := sha256.Sum256([]byte(secret))
	return hex.EncodeToString(sum[:])
}

// HandshakeValidator answers handshake frames. The reply is encoded once;
// the fingerprint is fixed for the process lifetime.
//
// Every handshake is accepted. The fingerprint proves relay identity to
// the peer; it does not authorize the peer.
type HandshakeValidator struct {
	reply HandshakeReply
	frame core.Frame
}

func NewHandshakeValidator(cfg HandshakeConfig) (*HandshakeValidator, error) {
	if cfg.Secret == "" {
		return nil, fmt.Errorf("handshake secret is empty")
	}
	reply := HandshakeReply{
		Status:     StatusAccepted,
		Phase:      cfg.Phase,
		Module:     cfg.Module,
		PolicyHash: PolicyFingerprint(cfg.Secret),
		Mode:       cfg.Mode,
	}
	b, err := json.Marshal(reply)
	if err != nil {
		return nil, fmt.Errorf("encode handshake reply: %w", err)
	}
	log.Info().Str("module", "app.handshake").Str("policy_hash", reply.PolicyHash).Msg("policy fingerprint ready")
	return &HandshakeValidator{reply: reply, frame: b}, nil
}

func (h *HandshakeValidator) Fingerprint() string { return h.reply.PolicyHash }

func (h *HandshakeValidator) Reply() HandshakeReply { return h.reply }

// Accept marks m as having completed the handshake and returns the frame
// to send back to it, and only to it.
func (h *HandshakeValidator) Accept(m core.Member) core.Frame {
	m.Peer().MarkHandshakeAccepted()
	log.Debug().Str("module", "app.handshake").Str("peer", string(m.Peer().ID)).Msg("handshake accepted")
	return h.frame
}
