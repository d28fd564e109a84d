package rpc

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hashicorp/go-plugin"
	"google.golang.org/grpc"
	"google.golang.org/grpc/encoding"
)

const (
	PluginMapKey      = "recstudio"
	serviceName       = "recstudio.publish.v1.Publisher"
	jsonCodecName     = "json"
	methodGetMetadata = "/" + serviceName + "/GetMetadata"
	methodListTargets = "/" + serviceName + "/ListTargets"
	methodPublish     = "/" + serviceName + "/Publish"
)

var HandshakeConfig = plugin.HandshakeConfig{
	ProtocolVersion:  1,
	MagicCookieKey:   "RECSTUDIO_PUBLISHER",
	MagicCookieValue: "recstudio",
}

type jsonCodec struct{}

func (jsonCodec) Marshal(v any) ([]byte, error) {
	return json.Marshal(v)
}

func (jsonCodec) Unmarshal(data []byte, v any) error {
	return json.Unmarshal(data, v)
}

func (jsonCodec) Name() string {
	return jsonCodecName
}

func init() {
	encoding.RegisterCodec(jsonCodec{})
}

type Empty struct{}

type Metadata struct {
	Name         string   `json:"name"`
	Version      string   `json:"version"`
	Capabilities []string `json:"capabilities"`
}

type TargetDescriptor struct {
	ID              string `json:"id"`
	Title           string `json:"title"`
	Description     string `json:"description"`
	InputSchemaJSON string `json:"input_schema_json"`
	TimeoutMS       int32  `json:"timeout_ms"`
}

type ListTargetsResponse struct {
	Targets []TargetDescriptor `json:"targets"`
}

type PublishContext struct {
	ProjectID  string            `json:"project_id"`
	Title      string            `json:"title"`
	ExportPath string            `json:"export_path"`
	Env        map[string]string `json:"env"`
}

type PublishRequest struct {
	TargetID  string         `json:"target_id"`
	InputJSON string         `json:"input_json"`
	Context   PublishContext `json:"context"`
}

type PublishResponse struct {
	URL      string `json:"url"`
	Detail   string `json:"detail"`
	Stderr   string `json:"stderr"`
	ExitCode int32  `json:"exit_code"`
}

type PublisherServer interface {
	GetMetadata(ctx context.Context, in *Empty) (*Metadata, error)
	ListTargets(ctx context.Context, in *Empty) (*ListTargetsResponse, error)
	Publish(ctx context.Context, in *PublishRequest) (*PublishResponse, error)
}

type PublisherClient interface {
	GetMetadata(ctx context.Context) (*Metadata, error)
	ListTargets(ctx context.Context) (*ListTargetsResponse, error)
	Publish(ctx context.Context, in *PublishRequest) (*PublishResponse, error)
}

type publisherClient struct {
	conn *grpc.ClientConn
}

func NewPublisherClient(conn *grpc.ClientConn) PublisherClient {
	return &publisherClient{conn: conn}
}

func (c *publisherClient) GetMetadata(ctx context.Context) (*Metadata, error) {
	out := &Metadata{}
	if err := c.conn.Invoke(ctx, methodGetMetadata, &Empty{}, out, grpc.CallContentSubtype(jsonCodecName)); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *publisherClient) ListTargets(ctx context.Context) (*ListTargetsResponse, error) {
	out := &ListTargetsResponse{}
	if err := c.conn.Invoke(ctx, methodListTargets, &Empty{}, out, grpc.CallContentSubtype(jsonCodecName)); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *publisherClient) Publish(ctx context.Context, in *PublishRequest) (*PublishResponse, error) {
	out := &PublishResponse{}
	if err := c.conn.Invoke(ctx, methodPublish, in, out, grpc.CallContentSubtype(jsonCodecName)); err != nil {
		return nil, err
	}
	return out, nil
}

func RegisterPublisherServer(server grpc.ServiceRegistrar, impl PublisherServer) {
	server.RegisterService(&grpc.ServiceDesc{
		ServiceName: serviceName,
		HandlerType: (*PublisherServer)(nil),
		Methods: []grpc.MethodDesc{
			{
				MethodName: "GetMetadata",
				Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
					in := &Empty{}
					if err := dec(in); err != nil {
						return nil, err
					}
					if interceptor == nil {
						return impl.GetMetadata(ctx, in)
					}
					info := &grpc.UnaryServerInfo{Server: srv, FullMethod: methodGetMetadata}
					handler := func(ctx context.Context, req any) (any, error) {
						empty, ok := req.(*Empty)
						if !ok {
							return nil, fmt.Errorf("invalid request type")
						}
						return impl.GetMetadata(ctx, empty)
					}
					return interceptor(ctx, in, info, handler)
				},
			},
			{
				MethodName: "ListTargets",
				Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
					in := &Empty{}
					if err := dec(in); err != nil {
						return nil, err
					}
					if interceptor == nil {
						return impl.ListTargets(ctx, in)
					}
					info := &grpc.UnaryServerInfo{Server: srv, FullMethod: methodListTargets}
					handler := func(ctx context.Context, req any) (any, error) {
						empty, ok := req.(*Empty)
						if !ok {
							return nil, fmt.Errorf("invalid request type")
						}
						return impl.ListTargets(ctx, empty)
					}
					return interceptor(ctx, in, info, handler)
				},
			},
			{
				MethodName: "Publish",
				Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
					in := &PublishRequest{}
					if err := dec(in); err != nil {
						return nil, err
					}
					if interceptor == nil {
						return impl.Publish(ctx, in)
					}
					info := &grpc.UnaryServerInfo{Server: srv, FullMethod: methodPublish}
					handler := func(ctx context.Context, req any) (any, error) {
						inReq, ok := req.(*PublishRequest)
						if !ok {
							return nil, fmt.Errorf("invalid request type")
						}
						return impl.Publish(ctx, inReq)
					}
					return interceptor(ctx, in, info, handler)
				},
			},
		},
		Streams:  []grpc.StreamDesc{},
		Metadata: "schemas/publish-rpc-v1.proto",
	}, impl)
}

type GRPCPlugin struct {
	plugin.NetRPCUnsupportedPlugin
	Impl PublisherServer
}

func (p *GRPCPlugin) GRPCServer(_ *plugin.GRPCBroker, server *grpc.Server) error {
	RegisterPublisherServer(server, p.Impl)
	return nil
}

func (p *GRPCPlugin) GRPCClient(_ context.Context, _ *plugin.GRPCBroker, conn *grpc.ClientConn) (any, error) {
	return NewPublisherClient(conn), nil
}

func PluginMap(impl PublisherServer) map[string]plugin.Plugin {
	return map[string]plugin.Plugin{
		PluginMapKey: &GRPCPlugin{Impl: impl},
	}
}
