// Package devices resolves Sensibo pods into human-presentable devices and
// issues state changes against them.
//
// Reads are cache-backed. A pod's detail record changes rarely and is cached
// per device for a day; the assembled device list is cached for a shorter
// time so added or removed pods show up sooner. A detail that cannot be
// fetched drops that one device from the list instead of failing the whole
// listing. Writes (state changes) always go to the API, exactly once, and
// every failure is returned to the caller.
package devices
