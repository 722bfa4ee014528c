// Package headinject inserts a script snippet into streamed HTML documents.
//
// Reverse proxies, web server modules and tracers see a response body as a
// sequence of chunks. This package forwards those chunks with a payload
// inserted right before the first `</head>` tag, without buffering the
// document and without copying bytes it does not have to.
//
// # Matching
//
// The tag is matched case-insensitively and tolerates ASCII whitespace before
// "head" and before ">":
//
//	</head>  </HEAD>  </HeAd>  </ head>  </head >   match
//	< /head>  </he ad>  </hea d>  </header>          do not match
//
// Only the first tag triggers injection. When the document has no tag, the
// output is padded with as many spaces as the payload is long, so a content
// length announced with the payload included stays correct.
//
// # Sessions
//
// One Session handles one document:
//
//	session := snippet.NewSession()
//	defer session.Release()
//
//	for chunk := range body {
//	    out := session.Write(chunk)
//	    out.WriteTo(conn)
//	}
//	out := session.End()
//	out.WriteTo(conn)
//
// Each Write or End returns an Output of at most four slices. Slices marked
// FromIncomingChunk alias the chunk just written; the others point into memory
// owned by the Session and are valid until the next call or Release. Misuse
// (overlapping calls, Write after End, reading an expired Output) panics with
// a *ContractError.
//
// Writer and Inject wrap a Session for io-based hosts, and Pool recycles
// sessions when many documents are served concurrently.
//
// # Snippets
//
// A Snippet is rendered from a Configuration, usually decoded from a document:
//
//	snippet, err := headinject.NewSnippet(json.New(), data)
//	if err != nil {
//	    log.Printf("code %d: %v", headinject.ErrorCode(err), err)
//	    return
//	}
//
// Configuration errors carry a stable code (see ErrorCode). Codec providers
// are available as subpackages:
//
//   - json - JSON encoding (application/json)
//   - yaml - YAML encoding (application/yaml)
//   - msgpack - MessagePack encoding (application/msgpack)
//   - bson - BSON encoding (application/bson)
//
// # Host duties
//
// Before streaming a body through a Session, a host should set
// HeaderInjectionPending on requests it forwards upstream, skip responses
// carrying HeaderInjected, and add Snippet.Length to any announced content
// length. Deciding which responses to inject is left to the host.
//
// # Events
//
// Snippet and session lifecycle events are emitted as capitan signals
// (SignalSnippetCreated, SignalSessionInjected, ...).
package headinject
