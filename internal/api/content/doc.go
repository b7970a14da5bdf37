// Package content answers resource requests addressed to the private
// scheme and host.
//
// Server is transport agnostic: it takes a Request and produces a Reply
// carrying either a payload or a failure kind. Handler adapts it to gin.
// Paths are routed by longest matching prefix:
//
//	""            the shell document
//	manifest      [manifest,metadata] of the open book
//	book/<name>   a file inside the open book
//	aux/<name>    a file inside the auxiliary asset root
//
// Internal detail (paths, causes) is logged and never placed in a Reply.
package content
