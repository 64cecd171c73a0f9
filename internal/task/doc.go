// Package task manages background job queuing and processing.
// It provides a bounded queue and a worker pool for asynchronous execution
// of long-running operations like generating page illustrations, so that
// backend calls never block HTTP request handling or session updates.
package task
