package headinject

import (
	"context"
	"time"

	"github.com/zoobzio/capitan"
)

// Signals for injection events.
var (
	SignalSnippetCreated  = capitan.NewSignal("headinject.snippet.created", "Snippet rendered from configuration")
	SignalSnippetRejected = capitan.NewSignal("headinject.snippet.rejected", "Configuration rejected")
	SignalSessionCreated  = capitan.NewSignal("headinject.session.created", "Session instantiated")
	SignalSessionInjected = capitan.NewSignal("headinject.session.injected", "Payload emitted before the head tag")
	SignalSessionEnded    = capitan.NewSignal("headinject.session.ended", "Document finished")
	SignalSessionReleased = capitan.NewSignal("headinject.session.released", "Session storage released")
)

// Keys for typed event data.
var (
	KeyPayloadSize  = capitan.NewIntKey("payload_size")
	KeyBytesIn      = capitan.NewIntKey("bytes_in")
	KeyBytesOut     = capitan.NewIntKey("bytes_out")
	KeyPaddingSize  = capitan.NewIntKey("padding_size")
	KeyMajorVersion = capitan.NewIntKey("major_version")
	KeySite         = capitan.NewStringKey("site")
	KeyClientToken  = capitan.NewStringKey("client_token")
	KeyOutcome      = capitan.NewStringKey("outcome")
	KeyFingerprint  = capitan.NewStringKey("fingerprint")
	KeyErrorCode    = capitan.NewIntKey("error_code")
	KeyDuration     = capitan.NewDurationKey("duration")
	KeyError        = capitan.NewErrorKey("error")
)

// Session outcomes reported by SignalSessionEnded.
const (
	OutcomeInjected = "injected"
	OutcomePadded   = "padded"
)

// emitSnippetCreated emits an event when a snippet is rendered.
func emitSnippetCreated(ctx context.Context, cfg *Configuration, size int, fingerprint string, duration time.Duration) {
	capitan.Emit(ctx, SignalSnippetCreated,
		KeyMajorVersion.Field(int(cfg.MajorVersion)),
		KeySite.Field(cfg.site()),
		KeyClientToken.Field(MaskToken(cfg.RUM.ClientToken)),
		KeyPayloadSize.Field(size),
		KeyFingerprint.Field(fingerprint),
		KeyDuration.Field(duration),
	)
}

// emitSnippetRejected emits an event when a configuration fails to decode or
// validate.
func emitSnippetRejected(ctx context.Context, err error) {
	capitan.Error(ctx, SignalSnippetRejected,
		KeyErrorCode.Field(int(ErrorCode(err))),
		KeyError.Field(err),
	)
}

// emitSessionCreated emits an event when a session is created.
func emitSessionCreated(ctx context.Context, payloadSize int) {
	capitan.Emit(ctx, SignalSessionCreated,
		KeyPayloadSize.Field(payloadSize),
	)
}

// emitSessionInjected emits an event when the payload is emitted.
func emitSessionInjected(ctx context.Context, payloadSize, bytesIn int) {
	capitan.Emit(ctx, SignalSessionInjected,
		KeyPayloadSize.Field(payloadSize),
		KeyBytesIn.Field(bytesIn),
	)
}

// emitSessionEnded emits an event when a session reaches End.
func emitSessionEnded(ctx context.Context, outcome string, bytesIn, bytesOut, padding int) {
	capitan.Emit(ctx, SignalSessionEnded,
		KeyOutcome.Field(outcome),
		KeyBytesIn.Field(bytesIn),
		KeyBytesOut.Field(bytesOut),
		KeyPaddingSize.Field(padding),
	)
}

// emitSessionReleased emits an event when a session is released.
func emitSessionReleased(ctx context.Context, bytesIn, bytesOut int) {
	capitan.Emit(ctx, SignalSessionReleased,
		KeyBytesIn.Field(bytesIn),
		KeyBytesOut.Field(bytesOut),
	)
}
