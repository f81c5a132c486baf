package parser

// Callback is the signature shared by every event the Parser emits. data
// is a span borrowed from the buffer passed to Execute: it is valid only
// for the duration of the call and must be copied by the callback if it
// needs to outlive it.
//
// The return value is a control code: 0 continues parsing, a negative
// value is treated as a callback failure and drives the Parser into
// StateError with ErrCallbackError, and a positive value is state-specific
// (currently only OnHeaders, where it means "skip the body").
type Callback func(p *Parser, data []byte) int

// Noop is the zero-returning placeholder callback, exposed so hosts can
// explicitly wire it into any event they don't care about instead of
// leaving the zero Callback value (which behaves identically, but Noop
// documents the intent).
func Noop(*Parser, []byte) int { return 0 }

// Callbacks is the full event table a host registers interest in.
// Every field defaults to Noop; a Callbacks zero value is valid and simply
// observes nothing.
type Callbacks struct {
	BeforeStateChange Callback
	AfterStateChange  Callback

	OnError    Callback
	OnFinish   Callback
	OnReset    Callback
	OnRequest  Callback
	OnResponse Callback

	OnMessageStart    Callback
	OnMessageComplete Callback

	OnMethod   Callback
	OnURL      Callback
	OnProtocol Callback
	OnVersion  Callback
	OnStatus   Callback
	OnReason   Callback

	OnHeaderName  Callback
	OnHeaderValue Callback
	OnHeaders     Callback

	OnConnect Callback
	OnUpgrade Callback

	OnChunkLength         Callback
	OnChunkExtensionName  Callback
	OnChunkExtensionValue Callback
	OnBody                Callback
	OnData                Callback
	OnTrailerName         Callback
	OnTrailerValue        Callback
	OnTrailers            Callback
}

func fallback(cb Callback) Callback {
	if cb == nil {
		return Noop
	}

	return cb
}

// resolved returns a copy of cbs with every nil field replaced by Noop, so
// Execute's hot path never needs a nil check.
func (cbs Callbacks) resolved() Callbacks {
	cbs.BeforeStateChange = fallback(cbs.BeforeStateChange)
	cbs.AfterStateChange = fallback(cbs.AfterStateChange)
	cbs.OnError = fallback(cbs.OnError)
	cbs.OnFinish = fallback(cbs.OnFinish)
	cbs.OnReset = fallback(cbs.OnReset)
	cbs.OnRequest = fallback(cbs.OnRequest)
	cbs.OnResponse = fallback(cbs.OnResponse)
	cbs.OnMessageStart = fallback(cbs.OnMessageStart)
	cbs.OnMessageComplete = fallback(cbs.OnMessageComplete)
	cbs.OnMethod = fallback(cbs.OnMethod)
	cbs.OnURL = fallback(cbs.OnURL)
	cbs.OnProtocol = fallback(cbs.OnProtocol)
	cbs.OnVersion = fallback(cbs.OnVersion)
	cbs.OnStatus = fallback(cbs.OnStatus)
	cbs.OnReason = fallback(cbs.OnReason)
	cbs.OnHeaderName = fallback(cbs.OnHeaderName)
	cbs.OnHeaderValue = fallback(cbs.OnHeaderValue)
	cbs.OnHeaders = fallback(cbs.OnHeaders)
	cbs.OnConnect = fallback(cbs.OnConnect)
	cbs.OnUpgrade = fallback(cbs.OnUpgrade)
	cbs.OnChunkLength = fallback(cbs.OnChunkLength)
	cbs.OnChunkExtensionName = fallback(cbs.OnChunkExtensionName)
	cbs.OnChunkExtensionValue = fallback(cbs.OnChunkExtensionValue)
	cbs.OnBody = fallback(cbs.OnBody)
	cbs.OnData = fallback(cbs.OnData)
	cbs.OnTrailerName = fallback(cbs.OnTrailerName)
	cbs.OnTrailerValue = fallback(cbs.OnTrailerValue)
	cbs.OnTrailers = fallback(cbs.OnTrailers)

	return cbs
}
