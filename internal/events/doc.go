// Package events is the platform's event surface: the two well-known hooks
// the host fires, the on/once callback registry for game notifications, and
// the Lua module that exposes both to plugin code.
//
// An API instance owns all registration state. It is not a singleton;
// plugin reloads construct fresh state through Clear. Registration and
// dispatch (everything except the hook Enter/Leave entry points, which are
// worker-safe) must happen on the script goroutine.
package events
