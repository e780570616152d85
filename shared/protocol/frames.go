// Package protocol define os frames trocados entre o cliente e o servidor de assets.
// Os frames usam o wire format do protobuf, codificado à mão com protowire.
//
//	Envelope      { 1: type (varint), 2: payload (bytes) }
//	AssetRequest  { 1: id (varint), 2: version (string), 3: path (string) }
//	AssetResponse { 1: id (varint), 2: status (varint), 3: data (bytes), 4: message (string) }
package protocol

import (
	"errors"
	"fmt"

	"google.golang.org/protobuf/encoding/protowire"
)

// MessageType identifica o conteúdo de um Envelope.
type MessageType int32

const (
	TypeUnknown       MessageType = 0
	TypeAssetRequest  MessageType = 1
	TypeAssetResponse MessageType = 2
)

// Status do atendimento de um pedido de asset.
type Status int32

const (
	StatusOK       Status = 0
	StatusNotFound Status = 1
	StatusError    Status = 2
)

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusNotFound:
		return "not_found"
	case StatusError:
		return "error"
	}
	return fmt.Sprintf("status(%d)", int32(s))
}

var ErrMalformed = errors.New("frame malformado")

// AssetRequest pede os bytes brutos de um asset.
type AssetRequest struct {
	ID      uint64
	Version string
	Path    string
}

// AssetResponse responde a um AssetRequest com o mesmo ID.
type AssetResponse struct {
	ID      uint64
	Status  Status
	Data    []byte
	Message string
}

// ---------- ENCODER ----------

func appendEnvelope(t MessageType, payload []byte) []byte {
	b := make([]byte, 0, len(payload)+8)
	b = protowire.AppendTag(b, 1, protowire.VarintType)
	b = protowire.AppendVarint(b, uint64(t))
	b = protowire.AppendTag(b, 2, protowire.BytesType)
	b = protowire.AppendBytes(b, payload)
	return b
}

// EncodeRequest serializa um pedido já dentro do envelope.
func EncodeRequest(r AssetRequest) []byte {
	var b []byte
	if r.ID != 0 {
		b = protowire.AppendTag(b, 1, protowire.VarintType)
		b = protowire.AppendVarint(b, r.ID)
	}
	if r.Version != "" {
		b = protowire.AppendTag(b, 2, protowire.BytesType)
		b = protowire.AppendString(b, r.Version)
	}
	if r.Path != "" {
		b = protowire.AppendTag(b, 3, protowire.BytesType)
		b = protowire.AppendString(b, r.Path)
	}
	return appendEnvelope(TypeAssetRequest, b)
}

// EncodeResponse serializa uma resposta já dentro do envelope.
func EncodeResponse(r AssetResponse) []byte {
	b := make([]byte, 0, len(r.Data)+len(r.Message)+16)
	if r.ID != 0 {
		b = protowire.AppendTag(b, 1, protowire.VarintType)
		b = protowire.AppendVarint(b, r.ID)
	}
	if r.Status != StatusOK {
		b = protowire.AppendTag(b, 2, protowire.VarintType)
		b = protowire.AppendVarint(b, uint64(r.Status))
	}
	if len(r.Data) > 0 {
		b = protowire.AppendTag(b, 3, protowire.BytesType)
		b = protowire.AppendBytes(b, r.Data)
	}
	if r.Message != "" {
		b = protowire.AppendTag(b, 4, protowire.BytesType)
		b = protowire.AppendString(b, r.Message)
	}
	return appendEnvelope(TypeAssetResponse, b)
}

// ---------- DECODER ----------

// fieldFunc recebe cada campo conhecido; retorna o número de bytes consumidos
// do valor, ou -1 se o campo não for reconhecido.
type fieldFunc func(num protowire.Number, typ protowire.Type, b []byte) int

// walk percorre os campos de uma mensagem, pulando os desconhecidos.
func walk(b []byte, fn fieldFunc) error {
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return fmt.Errorf("%w: %v", ErrMalformed, protowire.ParseError(n))
		}
		b = b[n:]

		n = fn(num, typ, b)
		if n == -1 {
			n = protowire.ConsumeFieldValue(num, typ, b)
		}
		if n < 0 {
			return fmt.Errorf("%w: %v", ErrMalformed, protowire.ParseError(n))
		}
		b = b[n:]
	}
	return nil
}

// Decode abre o envelope e retorna o tipo e o payload.
func Decode(frame []byte) (MessageType, []byte, error) {
	t := TypeUnknown
	var payload []byte

	err := walk(frame, func(num protowire.Number, typ protowire.Type, b []byte) int {
		switch {
		case num == 1 && typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(b)
			t = MessageType(v)
			return n
		case num == 2 && typ == protowire.BytesType:
			v, n := protowire.ConsumeBytes(b)
			payload = v
			return n
		}
		return -1
	})
	if err != nil {
		return TypeUnknown, nil, err
	}
	return t, payload, nil
}

// DecodeRequest decodifica o payload de um AssetRequest.
func DecodeRequest(payload []byte) (AssetRequest, error) {
	var r AssetRequest
	err := walk(payload, func(num protowire.Number, typ protowire.Type, b []byte) int {
		switch {
		case num == 1 && typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(b)
			r.ID = v
			return n
		case num == 2 && typ == protowire.BytesType:
			v, n := protowire.ConsumeString(b)
			r.Version = v
			return n
		case num == 3 && typ == protowire.BytesType:
			v, n := protowire.ConsumeString(b)
			r.Path = v
			return n
		}
		return -1
	})
	return r, err
}

// DecodeResponse decodifica o payload de um AssetResponse.
func DecodeResponse(payload []byte) (AssetResponse, error) {
	var r AssetResponse
	err := walk(payload, func(num protowire.Number, typ protowire.Type, b []byte) int {
		switch {
		case num == 1 && typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(b)
			r.ID = v
			return n
		case num == 2 && typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(b)
			r.Status = Status(v)
			return n
		case num == 3 && typ == protowire.BytesType:
			v, n := protowire.ConsumeBytes(b)
			r.Data = append([]byte(nil), v...)
			return n
		case num == 4 && typ == protowire.BytesType:
			v, n := protowire.ConsumeString(b)
			r.Message = v
			return n
		}
		return -1
	})
	return r, err
}
