// Package topicmgr keeps a central catalogue of the event topics published on the
// in-process message bus.
//
// Topics are defined once, at package level, by the component that publishes them and
// registered with a Manager. The catalogue is what the operator CLI lists and what the
// validator checks names against, so a typo in a topic name fails at startup instead of
// silently publishing into the void.
//
// Framework topics belong to the server itself:
//
//	var ServerStarted = topicmgr.DefineFramework(topicmgr.TopicConfig{
//		Name:        "server.lifecycle.started",
//		Description: "Published once the HTTP listener is up",
//		Pattern:     "server.lifecycle.started",
//	})
//
// Module topics belong to a feature package and carry its name as the first segment:
//
//	var SessionPaired = topicmgr.DefineModule(topicmgr.TopicConfig{
//		Name:        "pairing.session.paired",
//		Module:      "pairing",
//		Description: "Two sessions were linked as partners",
//		Pattern:     "pairing.session.paired",
//	})
package topicmgr
