/*
 * Copyright (c) 2025, WSO2 LLC. (https://www.wso2.com).
 *
 * WSO2 LLC. licenses this file to you under the Apache License,
 * Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.
 * You may obtain a copy of the License at
 *
 * http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing,
 * software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY
 * KIND, either express or implied.  See the License for the
 * specific language governing permissions and limitations
 * under the License.
 */

// Package observer provides a typed registry of synchronous callbacks.
package observer

import (
	"sync"

	"github.com/procurehub/procurement-server/internal/system/log"
)

// Observers holds callbacks notified in registration order. The zero value is ready to use.
type Observers[T any] struct {
	mu        sync.RWMutex
	nextID    uint64
	callbacks []registration[T]
}

type registration[T any] struct {
	id       uint64
	callback func(T)
}

// Register adds a callback and returns a function removing it again.
func (o *Observers[T]) Register(callback func(T)) func() {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.nextID++
	id := o.nextID
	o.callbacks = append(o.callbacks, registration[T]{id: id, callback: callback})

	return func() { o.unregister(id) }
}

func (o *Observers[T]) unregister(id uint64) {
	o.mu.Lock()
	defer o.mu.Unlock()

	for i, reg := range o.callbacks {
		if reg.id == id {
			o.callbacks = append(o.callbacks[:i:i], o.callbacks[i+1:]...)
			return
		}
	}
}

// Emit calls every registered callback with the value. A panicking callback
// is logged and does not stop delivery to the others.
func (o *Observers[T]) Emit(value T) {
	o.mu.RLock()
	callbacks := make([]registration[T], len(o.callbacks))
	copy(callbacks, o.callbacks)
	o.mu.RUnlock()

	for _, reg := range callbacks {
		invoke(reg.callback, value)
	}
}

// Len returns the number of registered callbacks.
func (o *Observers[T]) Len() int {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return len(o.callbacks)
}

// Clear removes all callbacks.
func (o *Observers[T]) Clear() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.callbacks = nil
}

func invoke[T any](callback func(T), value T) {
	defer func() {
		if r := recover(); r != nil {
			log.GetLogger().Error("Observer callback panicked", log.Any("panic", r))
		}
	}()
	callback(value)
}
