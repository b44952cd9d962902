package hub

import (
	"context"
	"fmt"
	"reflect"
	"time"

	"github.com/spf13/cast"

	"github.com/lattice-io/evhub/evtype"
	"github.com/lattice-io/evhub/payload"
	"github.com/lattice-io/evhub/subscription"
)

// WrapSyncFunc converts a loosely-typed callback into a subscription.SyncFunc
// invoked against a payload's Safe() region — the convenience half of the
// domain stack's "topic/attribute sugar" layer (spec §4.6). It never touches
// a payload's Unsafe region; callers who need that must build a SyncFunc by
// hand.
//
// Supported callback signatures:
//  1. func(ctx context.Context) error
//  2. func(ctx context.Context, payload Type) error, for every Type this
//     file special-cases below
//  3. func(ctx context.Context, payload any) error
//
// For a special-cased Type, WrapSyncFunc first tries a direct type
// assertion against Safe() and falls back to github.com/spf13/cast only
// when the dynamic type doesn't match exactly. A payload.Bytes Safe() value
// is handed to cast as a string.
func WrapSyncFunc(cb any) (subscription.SyncFunc, error) {
	cbVal := reflect.ValueOf(cb)
	if cbVal.Kind() != reflect.Func {
		return nil, fmt.Errorf("evhub: callback must be a function")
	}
	cbType := cbVal.Type()

	if cbType.NumOut() != 1 || !cbType.Out(0).Implements(reflect.TypeOf((*error)(nil)).Elem()) {
		return nil, fmt.Errorf("evhub: callback must return exactly one error value")
	}

	numIn := cbType.NumIn()
	if numIn < 1 || numIn > 2 {
		return nil, fmt.Errorf("evhub: callback must have 1-2 parameters")
	}
	if cbType.In(0) != reflect.TypeOf((*context.Context)(nil)).Elem() {
		return nil, fmt.Errorf("evhub: first parameter must be context.Context")
	}

	if numIn == 1 {
		cbFunc := cb.(func(ctx context.Context) error)
		return func(ctx context.Context, _ *subscription.Subscription, _ evtype.EventType, _ payload.Payload) error {
			return cbFunc(ctx)
		}, nil
	}

	switch paramType := cbType.In(1); paramType {
	case reflect.TypeOf(int(0)):
		return syncSafe(cb.(func(ctx context.Context, v int) error), cast.ToInt), nil
	case reflect.TypeOf(int8(0)):
		return syncSafe(cb.(func(ctx context.Context, v int8) error), cast.ToInt8), nil
	case reflect.TypeOf(int16(0)):
		return syncSafe(cb.(func(ctx context.Context, v int16) error), cast.ToInt16), nil
	case reflect.TypeOf(int32(0)):
		return syncSafe(cb.(func(ctx context.Context, v int32) error), cast.ToInt32), nil
	case reflect.TypeOf(int64(0)):
		return syncSafe(cb.(func(ctx context.Context, v int64) error), cast.ToInt64), nil
	case reflect.TypeOf(uint(0)):
		return syncSafe(cb.(func(ctx context.Context, v uint) error), cast.ToUint), nil
	case reflect.TypeOf(uint8(0)):
		return syncSafe(cb.(func(ctx context.Context, v uint8) error), cast.ToUint8), nil
	case reflect.TypeOf(uint16(0)):
		return syncSafe(cb.(func(ctx context.Context, v uint16) error), cast.ToUint16), nil
	case reflect.TypeOf(uint32(0)):
		return syncSafe(cb.(func(ctx context.Context, v uint32) error), cast.ToUint32), nil
	case reflect.TypeOf(uint64(0)):
		return syncSafe(cb.(func(ctx context.Context, v uint64) error), cast.ToUint64), nil
	case reflect.TypeOf(float32(0)):
		return syncSafe(cb.(func(ctx context.Context, v float32) error), cast.ToFloat32), nil
	case reflect.TypeOf(float64(0)):
		return syncSafe(cb.(func(ctx context.Context, v float64) error), cast.ToFloat64), nil
	case reflect.TypeOf(string("")):
		return syncSafe(cb.(func(ctx context.Context, v string) error), cast.ToString), nil
	case reflect.TypeOf(bool(false)):
		return syncSafe(cb.(func(ctx context.Context, v bool) error), cast.ToBool), nil
	case reflect.TypeOf(time.Time{}):
		return syncSafe(cb.(func(ctx context.Context, v time.Time) error), cast.ToTime), nil
	case reflect.TypeOf(time.Duration(0)):
		return syncSafe(cb.(func(ctx context.Context, v time.Duration) error), cast.ToDuration), nil
	case reflect.TypeOf([]string{}):
		return syncSafe(cb.(func(ctx context.Context, v []string) error), cast.ToStringSlice), nil
	case reflect.TypeOf(map[string]interface{}{}):
		return syncSafe(cb.(func(ctx context.Context, v map[string]interface{}) error), cast.ToStringMap), nil
	default:
		if cbFunc, ok := cb.(func(ctx context.Context, v any) error); ok {
			return func(ctx context.Context, _ *subscription.Subscription, _ evtype.EventType, p payload.Payload) error {
				return cbFunc(ctx, p.Safe())
			}, nil
		}
		return nil, fmt.Errorf("evhub: unsupported callback parameter type: %v", paramType)
	}
}

// syncSafe builds a subscription.SyncFunc around a typed callback, trying a
// direct assertion against Safe() before falling back to castFn. It is a
// small generic replacement for the donor's one-case-per-type reflect
// switch body; the switch itself (selecting which instantiation to use)
// still has to live in WrapSyncFunc, since Go generics cannot dispatch on a
// reflect.Type picked up at runtime.
func syncSafe[T any](cbFunc func(context.Context, T) error, castFn func(any) T) subscription.SyncFunc {
	return func(ctx context.Context, _ *subscription.Subscription, _ evtype.EventType, p payload.Payload) error {
		safe := p.Safe()
		if v, ok := safe.(T); ok {
			return cbFunc(ctx, v)
		}
		if b, ok := safe.(payload.Bytes); ok {
			// cast's type switch does not recognise the named Bytes type.
			safe = string(b)
		}
		return cbFunc(ctx, castFn(safe))
	}
}
