package backpack

import "errors"

// ErrConfiguration 凭证或客户端配置不正确
var ErrConfiguration = errors.New("backpack: configuration error")

// ErrClosed 客户端已关闭后仍发起请求
var ErrClosed = errors.New("backpack: client closed")
