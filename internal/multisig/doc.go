/*
Package multisig implements a registry of approval groups.

An approval group holds a quorum and an ordered list of signers. Each
signature adds the number of times the signing identity occurs in that
list to the group's approval count, so an identity listed twice fills two
quorum slots with one signature. Identities that are not listed may sign;
their signature is recorded but moves the count by zero.

Once the count reaches the quorum the group is completed for good. Later
signatures, including ones from identities that never signed, are
ignored without error and emit nothing.
*/
package multisig
