/*
The reducer has the purpose to filter out all reactions of a network which have 0 chance to carry flux.
Starting from the food sources it fires every reaction whose substrates are available until nothing new
becomes available. Reactions which never fire are removed, which shrinks the network the pruners and the
oracles have to walk through.
*/
package reducer
