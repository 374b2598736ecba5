// Package logging builds the room's logrus logger.
//
// Components take a logrus.FieldLogger. For tags a component's entries with
// src=<pointer> so interleaved output from several sessions can be told apart:
//
//	log := logging.New(logging.Options{Promote: true})
//	hubLog := logging.For(log, hub)
//
// Level promotion is on by default in the room binary and can be turned off
// with NO_LOG_LEVEL_PROMOTION.
package logging
