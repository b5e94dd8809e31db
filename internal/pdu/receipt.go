package pdu

import (
	"regexp"
	"strconv"
	"strings"
)

// Receipt is the parsed form of a delivery-receipt deliver_sm's text
// body. The format is SMSC-specific and not part of the SMPP v3.4
// standard proper, so parsing is deliberately tolerant: unknown keys
// never fail the parse, they land in Extra; missing fields come back
// empty.
type Receipt struct {
	MessageID  string
	Submitted  int
	Delivered  int
	SubmitDate string
	DoneDate   string
	Stat       string
	ErrorCode  string
	Text       string
	Extra      map[string]string
}

// receiptKeyRe finds the "key:" markers of the de-facto receipt format
// "id:<hex> sub:NNN dlvrd:NNN submit date:YYMMDDHHMM done date:YYMMDDHHMM
// stat:<WORD> err:NNN Text:<20 chars>": a word, optionally suffixed
// " date", followed by a colon. Keys match case-insensitively.
var receiptKeyRe = regexp.MustCompile(`(?i)\b([a-z]+(?: date)?):`)

// ParseReceipt tolerantly parses a delivery-receipt body. It never
// returns an error; a body with no recognizable keys yields a Receipt
// with every field empty. Everything after a "text:" key belongs to the
// Text field, since receipt text is free-form and terminal by
// convention.
func ParseReceipt(body []byte) Receipt {
	s := string(body)
	matches := receiptKeyRe.FindAllStringSubmatchIndex(s, -1)

	r := Receipt{}
	for i, m := range matches {
		key := strings.ToLower(s[m[2]:m[3]])
		valStart := m[1]
		valEnd := len(s)
		if key != "text" && i+1 < len(matches) {
			valEnd = matches[i+1][0]
		}
		val := strings.TrimSpace(s[valStart:valEnd])

		switch key {
		case "id":
			r.MessageID = val
		case "sub":
			r.Submitted, _ = strconv.Atoi(val)
		case "dlvrd":
			r.Delivered, _ = strconv.Atoi(val)
		case "submit date":
			r.SubmitDate = val
		case "done date":
			r.DoneDate = val
		case "stat":
			r.Stat = val
		case "err":
			r.ErrorCode = val
		case "text":
			r.Text = val
		default:
			if r.Extra == nil {
				r.Extra = make(map[string]string)
			}
			r.Extra[key] = val
		}
		if key == "text" {
			break
		}
	}
	return r
}
