package simvars

import (
	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
)

// The telemetry service carries well-known protobuf types only, so it is
// described by hand instead of through generated stubs:
//
//	service SimVars {
//	  rpc Watch(google.protobuf.Empty) returns (stream google.protobuf.Struct);
//	}
const (
	serviceName = "simvars.SimVars"
	watchMethod = "/simvars.SimVars/Watch"
)

type watchServer interface {
	Watch(*emptypb.Empty, grpc.ServerStream) error
}

func watchHandler(srv any, stream grpc.ServerStream) error {
	in := new(emptypb.Empty)
	if err := stream.RecvMsg(in); err != nil {
		return err
	}
	return srv.(watchServer).Watch(in, stream)
}

var serviceDesc = grpc.ServiceDesc{
	ServiceName: serviceName,
	HandlerType: (*watchServer)(nil),
	Streams: []grpc.StreamDesc{
		{
			StreamName:    "Watch",
			Handler:       watchHandler,
			ServerStreams: true,
		},
	},
	Metadata: "simvars.proto",
}

// toStruct encodes readings as a Struct of number values.
func toStruct(vals map[string]float64) (*structpb.Struct, error) {
	fields := make(map[string]any, len(vals))
	for k, v := range vals {
		fields[k] = v
	}
	return structpb.NewStruct(fields)
}

// fromStruct decodes a Struct, taking bools as 0 or 1 and skipping
// anything that isn't a number.
func fromStruct(msg *structpb.Struct) map[string]float64 {
	vals := make(map[string]float64, len(msg.GetFields()))
	for k, v := range msg.GetFields() {
		switch v.GetKind().(type) {
		case *structpb.Value_NumberValue:
			vals[k] = v.GetNumberValue()
		case *structpb.Value_BoolValue:
			if v.GetBoolValue() {
				vals[k] = 1
			} else {
				vals[k] = 0
			}
		}
	}
	return vals
}
