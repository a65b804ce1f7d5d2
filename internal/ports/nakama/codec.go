package nakama

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/jimmmmothy/Belote-Enterprise/internal/app"
	"github.com/jimmmmothy/Belote-Enterprise/internal/domain"

	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"
)

var marshalOptions = protojson.MarshalOptions{EmitUnpopulated: true}

// toStruct converts a JSON-tagged value into a protobuf Struct.
func toStruct(v any) (*structpb.Struct, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var fields map[string]interface{}
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, fmt.Errorf("payload is not an object: %w", err)
	}
	return structpb.NewStruct(fields)
}

func encodeStruct(v any) ([]byte, error) {
	s, err := toStruct(v)
	if err != nil {
		return nil, err
	}
	return marshalOptions.Marshal(s)
}

// encodeEvent returns the op code and wire payload for an app event.
func encodeEvent(ev app.Event) (int64, []byte, error) {
	op, ok := opCodeFor(ev.Kind)
	if !ok {
		return 0, nil, fmt.Errorf("unknown event kind %q", ev.Kind)
	}
	data, err := encodeStruct(ev.Payload)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to encode %s: %w", ev.Kind, err)
	}
	return op, data, nil
}

// GameErrorEvent is sent privately when an input is rejected.
type GameErrorEvent struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func encodeError(err error) ([]byte, error) {
	return encodeStruct(GameErrorEvent{Code: app.ErrorCode(err), Message: err.Error()})
}

func encodeLabel(label domain.LabelPayload) (string, error) {
	b, err := encodeStruct(label)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func decodeFields(data []byte) (map[string]*structpb.Value, error) {
	var s structpb.Struct
	if err := protojson.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("%w: %v", app.ErrMalformedInput, err)
	}
	return s.GetFields(), nil
}

// fieldString reads a string field, accepting numbers for ranks like 7.
func fieldString(v *structpb.Value) string {
	switch k := v.GetKind().(type) {
	case *structpb.Value_StringValue:
		return k.StringValue
	case *structpb.Value_NumberValue:
		return strconv.Itoa(int(k.NumberValue))
	default:
		return ""
	}
}

// decodeBid parses {"contract": "Hearts"}.
func decodeBid(data []byte) (domain.Contract, error) {
	fields, err := decodeFields(data)
	if err != nil {
		return domain.ContractPass, err
	}
	contract, err := domain.ParseContract(fieldString(fields["contract"]))
	if err != nil {
		return domain.ContractPass, fmt.Errorf("%w: %v", app.ErrMalformedInput, err)
	}
	return contract, nil
}

// decodeMove parses {"suit": "hearts", "rank": "J"}.
func decodeMove(playerID string, data []byte) (domain.Move, error) {
	fields, err := decodeFields(data)
	if err != nil {
		return domain.Move{}, err
	}
	suit, err := domain.ParseSuit(fieldString(fields["suit"]))
	if err != nil {
		return domain.Move{}, fmt.Errorf("%w: %v", app.ErrMalformedInput, err)
	}
	rank, err := domain.ParseRank(fieldString(fields["rank"]))
	if err != nil {
		return domain.Move{}, fmt.Errorf("%w: %v", app.ErrMalformedInput, err)
	}
	return domain.Move{PlayerID: playerID, Suit: suit, Rank: rank}, nil
}
