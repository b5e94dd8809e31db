package pdu

// Unbind is the (empty) body of an unbind PDU.
type Unbind struct{}

func (Unbind) CommandID() CommandID           { return UnbindID }
func (Unbind) MarshalBinary() ([]byte, error) { return nil, nil }
func (*Unbind) UnmarshalBinary([]byte) error  { return nil }

// UnbindResp is the (empty) body of an unbind_resp PDU.
type UnbindResp struct{}

func (UnbindResp) CommandID() CommandID           { return UnbindRespID }
func (UnbindResp) MarshalBinary() ([]byte, error) { return nil, nil }
func (*UnbindResp) UnmarshalBinary([]byte) error  { return nil }

// EnquireLink is the (empty) body of an enquire_link PDU.
type EnquireLink struct{}

func (EnquireLink) CommandID() CommandID           { return EnquireLinkID }
func (EnquireLink) MarshalBinary() ([]byte, error) { return nil, nil }
func (*EnquireLink) UnmarshalBinary([]byte) error  { return nil }

// EnquireLinkResp is the (empty) body of an enquire_link_resp PDU.
type EnquireLinkResp struct{}

func (EnquireLinkResp) CommandID() CommandID           { return EnquireLinkRespID }
func (EnquireLinkResp) MarshalBinary() ([]byte, error) { return nil, nil }
func (*EnquireLinkResp) UnmarshalBinary([]byte) error  { return nil }

// GenericNack is sent in reply to an unparseable or unsupported inbound
// request; its command_status carries the reason.
type GenericNack struct{}

func (GenericNack) CommandID() CommandID           { return GenericNackID }
func (GenericNack) MarshalBinary() ([]byte, error) { return nil, nil }
func (*GenericNack) UnmarshalBinary([]byte) error  { return nil }
