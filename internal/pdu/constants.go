// Package pdu implements the SMPP v3.4 PDU codec: header framing, the
// command and status enumerations, TLV optional parameters, and the
// concrete message bodies this client sends and receives.
package pdu

// Status is the four-byte command_status field of a PDU header.
type Status uint32

// ESME_R* status codes from the SMPP v3.4 register. Only StatusOK is
// success; StatusThrottled and StatusMsgQFul feed the throttle handler;
// StatusAlyBnd is tolerated as a bind outcome.
const (
	StatusOK              Status = 0x00000000
	StatusInvMsgLen       Status = 0x00000001
	StatusInvCmdLen       Status = 0x00000002
	StatusInvCmdID        Status = 0x00000003
	StatusInvBnd          Status = 0x00000004
	StatusAlyBnd          Status = 0x00000005
	StatusInvPrtFlg       Status = 0x00000006
	StatusInvRegDlvFlg    Status = 0x00000007
	StatusSysErr          Status = 0x00000008
	StatusInvSrcAdr       Status = 0x0000000A
	StatusInvDstAdr       Status = 0x0000000B
	StatusInvMsgID        Status = 0x0000000C
	StatusBindFail        Status = 0x0000000D
	StatusInvPaswd        Status = 0x0000000E
	StatusInvSysID        Status = 0x0000000F
	StatusCancelFail      Status = 0x00000011
	StatusReplaceFail     Status = 0x00000013
	StatusMsgQFul         Status = 0x00000014
	StatusInvSerTyp       Status = 0x00000015
	StatusInvNumDe        Status = 0x00000033
	StatusInvDLName       Status = 0x00000034
	StatusInvDestFlag     Status = 0x00000040
	StatusInvSubRep       Status = 0x00000042
	StatusInvEsmClass     Status = 0x00000043
	StatusCntSubDL        Status = 0x00000044
	StatusSubmitFail      Status = 0x00000045
	StatusInvSrcTON       Status = 0x00000048
	StatusInvSrcNPI       Status = 0x00000049
	StatusInvDstTON       Status = 0x00000050
	StatusInvDstNPI       Status = 0x00000051
	StatusInvSysTyp       Status = 0x00000053
	StatusInvRepFlag      Status = 0x00000054
	StatusInvNumMsgs      Status = 0x00000055
	StatusThrottled       Status = 0x00000058
	StatusInvSched        Status = 0x00000061
	StatusInvExpiry       Status = 0x00000062
	StatusInvDftMsgID     Status = 0x00000063
	StatusTempAppErr      Status = 0x00000064
	StatusPermAppErr      Status = 0x00000065
	StatusRejeAppErr      Status = 0x00000066
	StatusQueryFail       Status = 0x00000067
	StatusInvOptParStream Status = 0x000000C0
	StatusOptParNotAllwd  Status = 0x000000C1
	StatusInvParLen       Status = 0x000000C2
	StatusMissingOptParam Status = 0x000000C3
	StatusInvOptParamVal  Status = 0x000000C4
	StatusDeliveryFailure Status = 0x000000FE
	StatusUnknownErr      Status = 0x000000FF
)

func (s Status) OK() bool {
	return s == StatusOK || s == StatusAlyBnd
}

func (s Status) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return "STATUS_0x" + hexByte(uint32(s))
}

var statusNames = map[Status]string{
	StatusOK:              "ESME_ROK",
	StatusInvMsgLen:       "ESME_RINVMSGLEN",
	StatusInvCmdLen:       "ESME_RINVCMDLEN",
	StatusInvCmdID:        "ESME_RINVCMDID",
	StatusInvBnd:          "ESME_RINVBNDSTS",
	StatusAlyBnd:          "ESME_RALYBND",
	StatusInvPrtFlg:       "ESME_RINVPRTFLG",
	StatusInvRegDlvFlg:    "ESME_RINVREGDLVFLG",
	StatusSysErr:          "ESME_RSYSERR",
	StatusInvSrcAdr:       "ESME_RINVSRCADR",
	StatusInvDstAdr:       "ESME_RINVDSTADR",
	StatusInvMsgID:        "ESME_RINVMSGID",
	StatusBindFail:        "ESME_RBINDFAIL",
	StatusInvPaswd:        "ESME_RINVPASWD",
	StatusInvSysID:        "ESME_RINVSYSID",
	StatusCancelFail:      "ESME_RCANCELFAIL",
	StatusReplaceFail:     "ESME_RREPLACEFAIL",
	StatusMsgQFul:         "ESME_RMSGQFUL",
	StatusInvSerTyp:       "ESME_RINVSERTYP",
	StatusInvNumDe:        "ESME_RINVNUMDESTS",
	StatusInvDLName:       "ESME_RINVDLNAME",
	StatusInvDestFlag:     "ESME_RINVDESTFLAG",
	StatusInvSubRep:       "ESME_RINVSUBREP",
	StatusInvEsmClass:     "ESME_RINVESMCLASS",
	StatusCntSubDL:        "ESME_RCNTSUBDL",
	StatusSubmitFail:      "ESME_RSUBMITFAIL",
	StatusInvSrcTON:       "ESME_RINVSRCTON",
	StatusInvSrcNPI:       "ESME_RINVSRCNPI",
	StatusInvDstTON:       "ESME_RINVDSTTON",
	StatusInvDstNPI:       "ESME_RINVDSTNPI",
	StatusInvSysTyp:       "ESME_RINVSYSTYP",
	StatusInvRepFlag:      "ESME_RINVREPFLAG",
	StatusInvNumMsgs:      "ESME_RINVNUMMSGS",
	StatusThrottled:       "ESME_RTHROTTLED",
	StatusInvSched:        "ESME_RINVSCHED",
	StatusInvExpiry:       "ESME_RINVEXPIRY",
	StatusInvDftMsgID:     "ESME_RINVDFTMSGID",
	StatusTempAppErr:      "ESME_RX_T_APPN",
	StatusPermAppErr:      "ESME_RX_P_APPN",
	StatusRejeAppErr:      "ESME_RX_R_APPN",
	StatusQueryFail:       "ESME_RQUERYFAIL",
	StatusInvOptParStream: "ESME_RINVOPTPARSTREAM",
	StatusOptParNotAllwd:  "ESME_ROPTPARNOTALLWD",
	StatusInvParLen:       "ESME_RINVPARLEN",
	StatusMissingOptParam: "ESME_RMISSINGOPTPARAM",
	StatusInvOptParamVal:  "ESME_RINVOPTPARAMVAL",
	StatusDeliveryFailure: "ESME_RDELIVERYFAILURE",
	StatusUnknownErr:      "ESME_RUNKNOWNERR",
}

const hexDigits = "0123456789abcdef"

func hexByte(v uint32) string {
	if v == 0 {
		return "0"
	}
	var buf [8]byte
	i := len(buf)
	for v > 0 {
		i--
		buf[i] = hexDigits[v&0xf]
		v >>= 4
	}
	return string(buf[i:])
}

// CommandID is the four-byte command_id field of a PDU header. Response
// IDs have the high bit set relative to their request.
type CommandID uint32

// Command set this client sends or receives. query_sm, cancel_sm,
// replace_sm, submit_multi, data_sm, outbind and alert_notification are
// deliberately absent.
const (
	GenericNackID         CommandID = 0x80000000
	BindReceiverID        CommandID = 0x00000001
	BindReceiverRespID    CommandID = 0x80000001
	BindTransmitterID     CommandID = 0x00000002
	BindTransmitterRespID CommandID = 0x80000002
	SubmitSmID            CommandID = 0x00000004
	SubmitSmRespID        CommandID = 0x80000004
	DeliverSmID           CommandID = 0x00000005
	DeliverSmRespID       CommandID = 0x80000005
	UnbindID              CommandID = 0x00000006
	UnbindRespID          CommandID = 0x80000006
	BindTransceiverID     CommandID = 0x00000009
	BindTransceiverRespID CommandID = 0x80000009
	EnquireLinkID         CommandID = 0x00000015
	EnquireLinkRespID     CommandID = 0x80000015
)

// IsResponse reports whether the command ID carries the response bit.
func (c CommandID) IsResponse() bool {
	return c&0x80000000 != 0
}

// TagID is the two-byte tag of a TLV optional parameter.
type TagID uint16

// Optional parameter tags used by submit_sm/deliver_sm in this client.
// TagMessagePayload is handled specially: it is never present in an
// OptionalParams list (see ErrMessagePayloadTag).
const (
	TagDestAddrSubUnit      TagID = 0x0005
	TagSourceAddrSubunit    TagID = 0x000D
	TagQosTimeToLive        TagID = 0x0017
	TagPayloadType          TagID = 0x0019
	TagReceiptedMessageID   TagID = 0x001E
	TagMsMsgWaitFacilities  TagID = 0x0030
	TagPrivacyIndicator     TagID = 0x0201
	TagUserMessageReference TagID = 0x0204
	TagSourcePort           TagID = 0x020A
	TagDestinationPort      TagID = 0x020B
	TagSarMsgRefNum         TagID = 0x020C
	TagLanguageIndicator    TagID = 0x020D
	TagSarTotalSegments     TagID = 0x020E
	TagSarSegmentSeqnum     TagID = 0x020F
	TagCallbackNum          TagID = 0x0381
	TagMsAvailabilityStatus TagID = 0x0422
	TagNetworkErrorCode     TagID = 0x0423
	TagMessagePayload       TagID = 0x0424
	TagMoreMessagesToSend   TagID = 0x0426
	TagMessageState         TagID = 0x0427
)

// TON is the Type-Of-Number enumeration (SMPP v3.4 §5.2.5).
type TON uint8

const (
	TONUnknown          TON = 0x00
	TONInternational    TON = 0x01
	TONNational         TON = 0x02
	TONNetworkSpecific  TON = 0x03
	TONSubscriberNumber TON = 0x04
	TONAlphanumeric     TON = 0x05
	TONAbbreviated      TON = 0x06
)

// NPI is the Numbering-Plan-Indicator enumeration (SMPP v3.4 §5.2.6).
type NPI uint8

const (
	NPIUnknown     NPI = 0x00
	NPIISDN        NPI = 0x01
	NPIData        NPI = 0x03
	NPITelex       NPI = 0x04
	NPILandMobile  NPI = 0x06
	NPINational    NPI = 0x08
	NPIPrivate     NPI = 0x09
	NPIERMES       NPI = 0x0A
	NPIInternet    NPI = 0x0E
	NPIWAPClientID NPI = 0x12
)

// MaxPDUSize bounds the read buffer so a malformed length field cannot
// force an unbounded allocation. It accommodates a maximum-size
// message_payload (64 KiB) plus header and TLV overhead.
const MaxPDUSize = 66 * 1024

// HeaderLen is the fixed size of the SMPP PDU header.
const HeaderLen = 16
