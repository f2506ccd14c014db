package client

// Config 客户端配置
type Config struct {
	// Endpoint 节点/索引服务端点地址
	Endpoint string

	// Protocol 协议类型
	Protocol Protocol

	// ProjectID 索引服务的项目凭证标识，随每个请求以 project_id 头发送
	ProjectID string

	// Network 目标网络
	Network Network

	// Timeout 超时时间（秒）
	Timeout int

	// TLS 配置
	TLS *TLSConfig

	// Retry 重试配置（nil 使用默认值）
	Retry *RetryConfig

	// 调试模式
	Debug bool

	// 日志器（可选）
	Logger Logger
}

// Protocol 协议类型
type Protocol string

const (
	ProtocolHTTP      Protocol = "http"
	ProtocolGRPC      Protocol = "grpc"
	ProtocolWebSocket Protocol = "websocket"
)

// Network 网络选择
type Network string

const (
	NetworkMainnet Network = "mainnet"
	NetworkPreprod Network = "preprod"
	NetworkPreview Network = "preview"
)

// IsMainnet 是否主网
func (n Network) IsMainnet() bool {
	return n == NetworkMainnet
}

// Valid 检查网络取值是否合法
func (n Network) Valid() bool {
	switch n {
	case NetworkMainnet, NetworkPreprod, NetworkPreview:
		return true
	}
	return false
}

// TLSConfig TLS 配置
type TLSConfig struct {
	CertFile string
	KeyFile  string
	CAFile   string
	Insecure bool // 跳过 TLS 验证（仅用于开发）
}

// Logger 日志接口
type Logger interface {
	Debug(msg string, args ...interface{})
	Info(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
	Error(msg string, args ...interface{})
}

// DefaultConfig 返回默认配置
func DefaultConfig() *Config {
	return &Config{
		Endpoint: "http://localhost:3100/jsonrpc",
		Protocol: ProtocolHTTP,
		Network:  NetworkPreprod,
		Timeout:  30,
		Debug:    false,
	}
}
