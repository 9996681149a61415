// Package core contains the decision vocabulary of the loan lifecycle engine:
// decisions, rejections, notices and the authenticated caller.
//
// Decide functions in the feature packages are pure. They take the state a command handler
// loaded inside its transaction and return a DecisionResult. A refused command is a Rejection
// value carried in the result, never a Go error; errors are reserved for infrastructure failures.
//
// In Domain-Driven Design or Hexagonal Architecture terminology, this would be
// called the 'domain' layer.
package core
