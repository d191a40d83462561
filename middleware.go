package mqttsn

// HandlerInterceptor wraps a MessageHandler, letting cross-cutting concerns
// like logging or metrics apply to every delivered message.
//
// Example (Logging):
//
//	func LoggingInterceptor(next mqttsn.MessageHandler) mqttsn.MessageHandler {
//	    return func(s *mqttsn.Session, msg mqttsn.Message) {
//	        log.Printf("delivered %s (%d bytes)", msg.Topic, len(msg.Payload))
//	        next(s, msg)
//	    }
//	}
type HandlerInterceptor func(MessageHandler) MessageHandler

// PublishFunc matches the signature of Session.SendPublish.
type PublishFunc func(topic string, payload []byte, qos QoS, retain bool) (Token, error)

// PublishInterceptor wraps a PublishFunc, letting cross-cutting concerns
// apply to every outbound publish.
type PublishInterceptor func(PublishFunc) PublishFunc

func applyHandlerInterceptors(handler MessageHandler, interceptors []HandlerInterceptor) MessageHandler {
	for i := len(interceptors) - 1; i >= 0; i-- {
		handler = interceptors[i](handler)
	}
	return handler
}

func applyPublishInterceptors(publish PublishFunc, interceptors []PublishInterceptor) PublishFunc {
	for i := len(interceptors) - 1; i >= 0; i-- {
		publish = interceptors[i](publish)
	}
	return publish
}
