package rfb

// Client-to-server message types.
// https://tools.ietf.org/html/rfc6143#section-7.5
const (
	msgSetPixelFormat           = 0
	msgSetEncodings             = 2
	msgFramebufferUpdateRequest = 3
	msgKeyEvent                 = 4
	msgPointerEvent             = 5
	msgClientCutText            = 6
)

// Server-to-client message types.
// https://tools.ietf.org/html/rfc6143#section-7.6
const (
	msgFramebufferUpdate = 0
	msgSetColorMapEntry  = 1
	msgBell              = 2
	msgServerCutText     = 3
)

// Security types.
// https://tools.ietf.org/html/rfc6143#section-7.2.2
const (
	securityTypeNone   = 1
	securityTypeVNCAuth = 2
)

const (
	securityResultOK     = 0
	securityResultFailed = 1
)

const protocolVersion = "RFB 003.008\n"
